// Package registry resolves a digest definition to its Digest row,
// creating the Protease and Digest rows on first use. Grounded on
// lib/proteomics/scripts/digest_and_ingest.py's get_digest, which performs
// the same get-or-create over Protease then Digest, falling back to the
// default trypsin/zero-missed-cleavage definition when none is given.
package registry

import (
	"context"

	"github.com/saitomics/proteomics/internal/cleaver"
	"github.com/saitomics/proteomics/internal/config"
	"github.com/saitomics/proteomics/internal/digestdef"
	"github.com/saitomics/proteomics/internal/store"
)

// Registry resolves digest definitions against a Gateway.
type Registry struct {
	gw store.Gateway
}

func New(gw store.Gateway) *Registry {
	return &Registry{gw: gw}
}

// Resolved is a digest definition together with its parsed cleavage rule,
// ready for internal/cleaver.Cleave.
type Resolved struct {
	Digest store.Digest
	Rule   *cleaver.Rule
}

// Default resolves the built-in default digest definition (the
// trypsin/zero-missed-cleavage digest the original tool falls back to when
// --digest-def is omitted), sourced from the loaded Config.
func (r *Registry) Default(ctx context.Context, cfg config.Digest) (Resolved, error) {
	return r.resolve(ctx, cfg.DefaultProteaseID, cfg.DefaultCleavageRule,
		cfg.DefaultMaxMissedCleavages, cfg.DefaultMinAcids, cfg.DefaultMaxAcids)
}

// FromDefinition resolves a validated --digest-def document.
func (r *Registry) FromDefinition(ctx context.Context, def digestdef.Definition) (Resolved, error) {
	return r.resolve(ctx, def.Protease.ID, def.Protease.CleavageRule,
		def.MaxMissedCleavages, def.MinAcids, def.MaxAcids)
}

func (r *Registry) resolve(ctx context.Context, proteaseID, cleavageRule string, maxMissed, minAcids, maxAcids int) (Resolved, error) {
	rule, err := cleaver.ParseRule(cleavageRule)
	if err != nil {
		return Resolved{}, err
	}

	if err := r.gw.FindOrCreateProtease(ctx, proteaseID, cleavageRule); err != nil {
		return Resolved{}, err
	}
	digest, err := r.gw.FindOrCreateDigest(ctx, proteaseID, maxMissed, minAcids, maxAcids)
	if err != nil {
		return Resolved{}, err
	}
	digest.CleavageRule = cleavageRule

	return Resolved{Digest: digest, Rule: rule}, nil
}

// List returns every registered digest, for operators discovering which
// --digest-def values are already known before running redundancy tables.
func (r *Registry) List(ctx context.Context) ([]store.Digest, error) {
	return r.gw.ListDigests(ctx)
}
