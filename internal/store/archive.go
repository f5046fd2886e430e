package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
)

// Archive stores accepted ideas' conversation transcripts in S3.
type Archive struct {
	client *s3.Client
	bucket string
}

// NewArchive creates an S3 transcript archive.
func NewArchive(client *s3.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// SaveTranscript uploads the conversation as JSON and returns the object key.
func (a *Archive) SaveTranscript(ctx context.Context, ideaID string, history []conversation.Message) (string, error) {
	key := "conversations/" + ideaID + ".json"

	body, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &a.bucket,
		Key:           &key,
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("upload transcript: %w", err)
	}
	return key, nil
}
