package review

import (
	"io"
	"os"

	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
)

// Draw writes the stage graph as a Graphviz DOT document.
func (p *Pipeline) Draw(w io.Writer) error {
	if err := draw.DOT(p.graph, w, draw.GraphAttribute("rankdir", "TB")); err != nil {
		return errors.Wrap(err, "render stage graph")
	}
	return nil
}

// DrawFile writes the DOT document to path.
func (p *Pipeline) DrawFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", path)
	}

	if err := p.Draw(file); err != nil {
		file.Close()
		return err
	}

	return errors.Wrapf(file.Close(), "unable to close file %s", path)
}
