package score

import "errors"

// Builder composes a final similarity: base + boosts, then x factor.
// The first invalid argument is remembered and returned by Build.
type Builder struct {
	base   Similarity
	boost  float64
	factor float64
	err    error
}

// NewBuilder starts from a base score.
func NewBuilder(base Score) *Builder {
	return &Builder{base: base.ToSimilarity(), factor: 1}
}

// WithKeywordBoost adds a keyword-match boost.
func (b *Builder) WithKeywordBoost(delta float64) *Builder { return b.addBoost(delta) }

// WithTitleBoost adds a title-match boost.
func (b *Builder) WithTitleBoost(delta float64) *Builder { return b.addBoost(delta) }

// WithContentBoost adds a content-match boost.
func (b *Builder) WithContentBoost(delta float64) *Builder { return b.addBoost(delta) }

// WithPathBoost adds a path-match boost.
func (b *Builder) WithPathBoost(delta float64) *Builder { return b.addBoost(delta) }

// WithDateFactor scales the result for a title matching a query date.
func (b *Builder) WithDateFactor(factor float64) *Builder { return b.MultiplyBy(factor) }

// WithPathFactor scales the result for a path matching a query hint.
func (b *Builder) WithPathFactor(factor float64) *Builder { return b.MultiplyBy(factor) }

// MultiplyBy multiplies the final factor. Factors compose multiplicatively,
// so the order of calls does not matter.
func (b *Builder) MultiplyBy(factor float64) *Builder {
	if _, err := Zero.Multiply(factor); err != nil {
		b.setErr(err)
		return b
	}
	b.factor *= factor
	return b
}

func (b *Builder) addBoost(delta float64) *Builder {
	if _, err := Zero.Boost(delta); err != nil {
		b.setErr(err)
		return b
	}
	b.boost += delta
	return b
}

func (b *Builder) setErr(err error) {
	b.err = errors.Join(b.err, err)
}

// Build returns (base + boosts) * factor.
func (b *Builder) Build() (Similarity, error) {
	if b.err != nil {
		return Zero, b.err
	}
	boosted, err := b.base.Boost(b.boost)
	if err != nil {
		return Zero, err
	}
	return boosted.Multiply(b.factor)
}
