package brainstorm

// rateLimitTopic triggers the expert briefing flow instead of a brainstorm.
// Matched case-insensitively against the session topic.
const rateLimitTopic = "hız sınırları koyalım"

// rateLimitDocumentation is the source material handed to the Hız Sınırları
// Uzmanı for the briefing. Abridged from the Gemini API rate limit docs.
const rateLimitDocumentation = `
Rate limits regulate the number of requests you can make to the Gemini API within a given timeframe. These limits help maintain fair usage, protect against abuse, and help maintain system performance for all users.

## How rate limits work

Rate limits are usually measured across three dimensions:

- Requests per minute (RPM)
- Tokens per minute (input) (TPM)
- Requests per day (RPD)

Your usage is evaluated against each limit, and exceeding any of them will trigger a rate limit error. For example, if your RPM limit is 20, making 21 requests within a minute will result in an error, even if you haven't exceeded your TPM or other limits.

Rate limits are applied per project, not per API key.

Requests per day (RPD) quotas reset at midnight Pacific time.

Limits vary depending on the specific model being used, and some limits only apply to specific models. Rate limits are more restricted for experimental and preview models.

## Usage tiers

Rate limits are tied to the project's usage tier. As your API usage and spending increase, you'll have an option to upgrade to a higher tier with increased rate limits. The qualifications for Tiers 2 and 3 are based on the total cumulative spending on Google Cloud services for the billing account linked to your project.

| Tier   | Qualifications                                                     |
|--------|--------------------------------------------------------------------|
| Free   | Users in eligible countries                                        |
| Tier 1 | Billing account linked to the project                              |
| Tier 2 | Total spend: > $250 and at least 30 days since successful payment  |
| Tier 3 | Total spend: > $1,000 and at least 30 days since successful payment|

## Standard API rate limits (Free Tier)

| Model                 | RPM | TPM       | RPD   |
|-----------------------|-----|-----------|-------|
| Gemini 2.5 Pro        | 2   | 125,000   | 50    |
| Gemini 2.5 Flash      | 10  | 250,000   | 250   |
| Gemini 2.5 Flash-Lite | 15  | 250,000   | 1,000 |
| Gemini 2.0 Flash      | 15  | 1,000,000 | 200   |
| Gemini 2.0 Flash-Lite | 30  | 1,000,000 | 200   |

If you exceed a limit the API responds with HTTP 429. Back off exponentially and retry, or upgrade your tier for sustained throughput.
`
