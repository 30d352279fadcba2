package store

import (
	"context"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// NopPersister is used when persistence is disabled. Loads nothing, saves
// nothing, so dedup state lives only for the process lifetime.
type NopPersister struct{}

func NewNopPersister() *NopPersister { return &NopPersister{} }

func (p *NopPersister) Save(_ context.Context, _ []model.Posting) error    { return nil }
func (p *NopPersister) Load(_ context.Context) ([]model.Posting, error)    { return nil, nil }
