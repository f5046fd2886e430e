package persona

// Modifiers are the per-session behavioral adjustments applied on top of a
// persona's base directive.
type Modifiers struct {
	Concise bool
	DeepDive bool
	// BigBossInfluence is 0 when Big Boss mode is off; otherwise 1-100.
	BigBossInfluence int
}

// Directive clause fragments. These are appended verbatim and compared
// byte-for-byte in tests, so they must never be reworded casually.
const (
	mutedDirective   = `Sen bu turda sessizsin. Sadece tek kelimelik bir cevap ver veya "..." de.`
	leaderClause     = "\nSen bu tartışmada lidersin. Daha detaylı ve yönlendirici ol."
	conciseClause    = "\nCevapların kısa ve öz olsun. En fazla 2-3 cümle kullan."
	deepDiveClause   = "\nBu turda derinlemesine analiz yap. Fikrin her yönünü detaylıca ele al."
	bossHighClause   = "\nBig Boss'un etki seviyesi çok yüksek. Her 2-3 turda bir ondan görüş istemelisin."
	bossMidClause    = "\nBig Boss'un etki seviyesi orta düzeyde. Tartışmanın ortasında onun görüşünü al."
	bossLowClause    = "\nBig Boss'un etki seviyesi düşük. Sadece tartışmanın sonuna doğru veya bir fikir bulunduğunda ondan onay iste."
)

// Compile produces the final instruction text for one persona's turn. It is a
// pure function: identical inputs yield byte-identical output, because the
// result is sent verbatim to the generation backend.
//
// A Muted focus replaces the directive entirely — muted personas never
// contribute substantive content. All other clauses append in a fixed order:
// leader, concise, deep-dive, and (Moderator only) the Big Boss influence
// tier.
func Compile(def Definition, focus Dominance, mods Modifiers) string {
	if focus == Muted {
		return mutedDirective
	}

	instruction := def.Directive
	if focus == Leader {
		instruction += leaderClause
	}
	if mods.Concise {
		instruction += conciseClause
	}
	if mods.DeepDive {
		instruction += deepDiveClause
	}
	if def.Persona == Moderator && mods.BigBossInfluence > 0 {
		instruction += bossInfluenceClause(mods.BigBossInfluence)
	}
	return instruction
}

// bossInfluenceClause picks the Moderator's solicitation cadence by influence
// tier: above 75 the Big Boss is consulted every few turns, between 25 and 75
// at the midpoint, below 25 only near the end.
func bossInfluenceClause(influence int) string {
	switch {
	case influence > 75:
		return bossHighClause
	case influence >= 25:
		return bossMidClause
	default:
		return bossLowClause
	}
}
