package content

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

//go:embed packs/*.yaml
var embedded embed.FS

// Embedded returns the packs shipped with the binary.
func Embedded() ([]*Pack, error) {
	sub, err := fs.Sub(embedded, "packs")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// scanCheckEvery is how often Scan polls the context.
const scanCheckEvery = 64

// Source merges packs into one catalog and pool. When two packs define the
// same verb or form, the earlier pack wins.
type Source struct {
	packs   []*Pack
	catalog *verb.Catalog
	pool    *verb.Pool
	log     *logger.Logger
}

// NewSource builds a source from packs. At least one pack with forms is required.
func NewSource(log *logger.Logger, packs ...*Pack) (*Source, error) {
	log = logger.OrNop(log)

	var (
		forms []verb.Form
		infos []verb.Info
		known = make(map[string]bool)
	)
	for _, p := range packs {
		forms = append(forms, p.FormsList()...)
		for _, info := range p.Infos() {
			if known[info.Lemma] {
				log.Debug("verb shadowed by earlier pack", "lemma", info.Lemma, "pack", p.Name)
				continue
			}
			known[info.Lemma] = true
			infos = append(infos, info)
		}
	}
	pool := verb.NewPool(forms)
	if pool.Len() == 0 {
		return nil, fmt.Errorf("content: no forms in %d pack(s)", len(packs))
	}
	log.Info("content loaded", "packs", len(packs), "verbs", len(infos), "forms", pool.Len())

	return &Source{
		packs:   packs,
		catalog: verb.NewCatalog(infos),
		pool:    pool,
		log:     log,
	}, nil
}

// Catalog returns the merged verb metadata.
func (s *Source) Catalog() *verb.Catalog {
	return s.catalog
}

// Packs returns the loaded packs in precedence order.
func (s *Source) Packs() []*Pack {
	return s.packs
}

// Pool returns the full form pool. Every region shares one pool; dialect
// gating happens in eligibility so that the person relaxation can still
// reach other second-person forms.
func (s *Source) Pool(ctx context.Context, region settings.Region) (*verb.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.pool, nil
}

// Scan streams forms to fn until it returns false. The context is polled
// periodically; a cancelled scan returns the context error.
func (s *Source) Scan(ctx context.Context, fn func(verb.Form) bool) error {
	for i, f := range s.pool.Forms() {
		if i%scanCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if !fn(f.Clone()) {
			return nil
		}
	}
	return nil
}
