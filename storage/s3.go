package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rdbackup/config"
)

// NewS3Client erstellt einen S3-Client für die Snapshot-Ablage.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// UploadSnapshot lädt einen serialisierten Snapshot ins Bucket hoch und
// gibt den Link zurück.
func UploadSnapshot(ctx context.Context, client *s3.Client, cfg *config.Config, key string, data []byte) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &cfg.S3Bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}
	link := fmt.Sprintf("%s/%s/%s", cfg.S3URL, cfg.S3Bucket, key)
	return link, nil
}

// RotateSnapshots löscht alte Snapshots aus dem Bucket und behält nur die
// jüngsten keep Objekte. Die Schlüssel tragen einen UTC-Zeitstempel, die
// lexikographische Ordnung ist daher die zeitliche.
func RotateSnapshots(ctx context.Context, client *s3.Client, cfg *config.Config, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	var keys []string
	var token *string
	for {
		out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &cfg.S3Bucket,
			ContinuationToken: token,
		})
		if err != nil {
			return 0, err
		}
		for _, object := range out.Contents {
			if object.Key != nil {
				keys = append(keys, *object.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}

	if len(keys) <= keep {
		return 0, nil
	}
	sort.Strings(keys)

	deleted := 0
	for _, key := range keys[:len(keys)-keep] {
		key := key
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &cfg.S3Bucket,
			Key:    &key,
		})
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
