// Package prep turns one evaluation record at a time into cleaned code sets:
// clerical coder answers on one side, model output (a primary code with
// ranked alternatives as fallback) on the other.
package prep

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sic-clean/internal/sic"
)

// Source records where a model record's codes came from.
type Source string

// Code sources.
const (
	SourceNone         Source = ""
	SourcePrimary      Source = "primary"
	SourceAlternatives Source = "alternatives"
	SourceClerical     Source = "clerical"
	SourceFourPlus     Source = "four_plus"
)

// Config controls record preparation.
type Config struct {
	// Level is the hierarchy level codes are cleaned to.
	Level sic.Level
	// Threshold is the likelihood a single alternative must reach to be
	// chosen over the others.
	Threshold float64
}

// DefaultConfig cleans to sub-class with no threshold pruning.
func DefaultConfig() Config {
	return Config{Level: sic.SubClass}
}

// Validate checks the level and threshold.
func (c Config) Validate() error {
	if c.Level.String() == "unknown" {
		return eris.Wrapf(sic.ErrInvalidLevel, "prep: level %d", int(c.Level))
	}
	if c.Threshold < 0 {
		return eris.Errorf("prep: threshold must be >= 0, got %v", c.Threshold)
	}
	return nil
}

// ClericalRecord holds up to three coder answers for one response plus the
// answer from the "4+" follow-up sheet, which replaces them when present.
type ClericalRecord struct {
	ID       string   `json:"unique_id"`
	Codes    []string `json:"codes"`
	FourPlus string   `json:"four_plus,omitempty"`
}

// ModelRecord holds a model's primary code and its ranked alternatives.
// Alternatives is nil when the model produced none.
type ModelRecord struct {
	ID           string
	InitialCode  string
	Alternatives sic.Input
}

// Prepared is the cleaned form of one record.
type Prepared struct {
	ID         string    `json:"unique_id"`
	Codes      sic.Set   `json:"codes"`
	Invalid    sic.Set   `json:"invalid"`
	Codability sic.Label `json:"codability"`
	Source     Source    `json:"source,omitempty"`
}

// Preparer applies a Config through an Engine.
type Preparer struct {
	engine *sic.Engine
	cfg    Config
}

// New validates cfg and returns a Preparer.
func New(engine *sic.Engine, cfg Config) (*Preparer, error) {
	if engine == nil {
		return nil, eris.New("prep: engine is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Preparer{engine: engine, cfg: cfg}, nil
}

// Config returns the preparer's configuration.
func (p *Preparer) Config() Config {
	return p.cfg
}

// Clerical joins the coder answers, lets a 4+ answer that names at least
// one code replace them, and cleans the result.
func (p *Preparer) Clerical(rec ClericalRecord) Prepared {
	src := SourceClerical
	raw := joinCodes(rec.Codes)
	if p.engine.ParseCodes(rec.FourPlus).Len() > 0 {
		raw = rec.FourPlus
		src = SourceFourPlus
	}

	res := p.engine.CleanRaw(raw, p.cfg.Level)
	if res.Valid.Len() == 0 {
		src = SourceNone
	}
	return p.finish(rec.ID, res, src)
}

// Model cleans the primary code. When it yields nothing the alternatives are
// resolved instead; invalid tokens from both passes are kept.
func (p *Preparer) Model(rec ModelRecord) (Prepared, error) {
	res := p.engine.CleanRaw(rec.InitialCode, p.cfg.Level)
	if res.Valid.Len() > 0 {
		return p.finish(rec.ID, res, SourcePrimary), nil
	}
	if rec.Alternatives == nil {
		return p.finish(rec.ID, res, SourceNone), nil
	}

	alt, err := p.engine.Resolve(rec.Alternatives, p.cfg.Level, p.cfg.Threshold)
	invalid := res.Invalid.Union(alt.Invalid)
	if err != nil {
		return p.finish(rec.ID, sic.Result{Valid: sic.Set{}, Invalid: invalid}, SourceNone),
			eris.Wrapf(err, "prep: record %s alternatives", rec.ID)
	}

	src := SourceAlternatives
	if alt.Valid.Len() == 0 {
		src = SourceNone
	}
	return p.finish(rec.ID, sic.Result{Valid: alt.Valid, Invalid: invalid}, src), nil
}

func (p *Preparer) finish(id string, res sic.Result, src Source) Prepared {
	return Prepared{
		ID:         id,
		Codes:      res.Valid,
		Invalid:    res.Invalid,
		Codability: p.engine.Codability(res.Valid),
		Source:     src,
	}
}

func joinCodes(codes []string) string {
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		if strings.TrimSpace(c) != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ";")
}
