package pipeline

import (
	"context"
	"errors"

	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

type fakePage struct {
	number int
	text   string
	grid   models.Grid
	words  []models.Word
	err    error
	panic  bool
}

func (p *fakePage) Number() int { return p.number }

func (p *fakePage) Text() (string, error) {
	if p.panic {
		panic("corrupt content stream")
	}
	return p.text, p.err
}

func (p *fakePage) Table() (models.Grid, error) {
	if p.panic {
		panic("corrupt content stream")
	}
	return p.grid, p.err
}

func (p *fakePage) Words() ([]models.Word, error) { return p.words, p.err }

type fakeDoc struct {
	name   string
	path   string
	pages  []extractor.Page
	closed bool
}

func newDoc(name string, pages ...*fakePage) *fakeDoc {
	d := &fakeDoc{name: name, path: "/statements/" + name}
	for i, p := range pages {
		if p.number == 0 {
			p.number = i + 1
		}
		d.pages = append(d.pages, p)
	}
	return d
}

func (d *fakeDoc) Name() string            { return d.name }
func (d *fakeDoc) Path() string            { return d.path }
func (d *fakeDoc) Pages() []extractor.Page { return d.pages }

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

// opener serves fake documents by path.
func opener(docs ...*fakeDoc) func(string) (extractor.Document, error) {
	byPath := make(map[string]*fakeDoc, len(docs))
	for _, d := range docs {
		byPath[d.path] = d
	}
	return func(path string) (extractor.Document, error) {
		d, ok := byPath[path]
		if !ok {
			return nil, extractor.ErrOpen
		}
		return d, nil
	}
}

type fakeRasterizer struct {
	pages [][]byte
	err   error
	calls int
}

func (r *fakeRasterizer) Rasterize(ctx context.Context, path string) ([][]byte, error) {
	r.calls++
	return r.pages, r.err
}

// fakeOCR returns the text registered for each image's content.
type fakeOCR struct {
	texts map[string]string
	block bool
}

func (o *fakeOCR) Recognize(ctx context.Context, png []byte) (string, error) {
	if o.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	text, ok := o.texts[string(png)]
	if !ok {
		return "", errors.New("unreadable image")
	}
	return text, nil
}

func word(text string, left, top float64) models.Word {
	return models.Word{Text: text, Left: left, Right: left + float64(len(text))*5, Top: top, Bottom: top + 10}
}
