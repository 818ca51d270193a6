package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// Postgrest is a MetadataStore writing through the supabase rest api, for deployments
// that don't have a direct database connection.
type Postgrest struct {
	opts   *Options
	client *postgrest.Client
}

// NewPostgrest connects to the rest api of the supabase project at opts.URL.
func NewPostgrest(opts *Options) (*Postgrest, error) {
	opts.SetDefaults()
	if opts.URL == "" || opts.Key == "" {
		return nil, fmt.Errorf("%w postgrest requires a url & key", errors.ErrInvalidArg)
	}
	client := postgrest.NewClient(strings.TrimSuffix(opts.URL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        opts.Key,
		"Authorization": fmt.Sprintf("Bearer %s", opts.Key),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("%w postgrest client: %v", errors.ErrInvalidArg, client.ClientError)
	}
	return &Postgrest{opts: opts, client: client}, nil
}

func (p *Postgrest) Close() error {
	return nil
}

func (p *Postgrest) Put(ctx context.Context, a *structs.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.client.From(p.opts.Table).
		Insert(toArtifactRow(a), false, "", "minimal", "").
		Execute()
	return err
}

// toArtifactRow maps an artifact onto the table's columns.
func toArtifactRow(a *structs.Artifact) map[string]interface{} {
	if a.ProcessedAt == 0 {
		a.ProcessedAt = timeNow()
	}
	if a.Status == "" {
		a.Status = structs.ACTIVE
	}
	return map[string]interface{}{
		"id":           a.ID,
		"owner_id":     a.OwnerID,
		"container":    a.Location.Container,
		"key":          a.Location.Key,
		"title":        a.Title,
		"status":       string(a.Status),
		"processed_at": a.ProcessedAt,
	}
}
