package images

import (
	"context"
	"errors"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

var errNotSVG = errors.New("document has no svg element")

// SVGMinifier optimises vector tickets in process.
type SVGMinifier struct {
	m *minify.M
}

var _ Optimizer = (*SVGMinifier)(nil)

func NewSVGMinifier() *SVGMinifier {
	m := minify.New()
	m.AddFunc(svgMIME, svg.Minify)
	return &SVGMinifier{m: m}
}

func (o *SVGMinifier) Optimize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.Contains(text, "<svg") {
		return "", errNotSVG
	}

	out, err := o.m.String(svgMIME, text)
	if err != nil {
		return "", err
	}
	if !strings.Contains(out, "<svg") {
		return "", errNotSVG
	}
	return out, ctx.Err()
}
