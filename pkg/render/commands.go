package render

import (
	"context"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// GraphicsMagick renders thumbnails with "gm convert".
type GraphicsMagick struct {
	Binary string
	Runner Runner
}

// Command returns the program and arguments used to render in into out.
func (g GraphicsMagick) Command(in, out string, opts geometry.ResizeOptions) (string, []string) {
	bin := g.Binary
	if bin == "" {
		bin = "gm"
	}

	args := append([]string{"convert", in}, opts.Args()...)
	return bin, append(args, out)
}

// Render implements thumbnail.Renderer.
func (g GraphicsMagick) Render(ctx context.Context, in, out string, opts geometry.ResizeOptions) error {
	name, args := g.Command(in, out, opts)
	return runner(g.Runner).Run(ctx, name, args)
}

// Pngquant optimizes PNG files in place.
type Pngquant struct {
	Binary string
	Runner Runner
}

// Command returns the program and arguments used to optimize file.
func (p Pngquant) Command(file, quality string) (string, []string) {
	bin := p.Binary
	if bin == "" {
		bin = "pngquant"
	}
	return bin, []string{"-f", "--ext", ".png", "--quality", quality, file}
}

// pngquant exit codes for "quality range not reachable" and "result larger
// than input". The input is left untouched in both cases.
const (
	pngquantQualityTooLow = 99
	pngquantNotSmaller    = 98
)

// Optimize implements thumbnail.Optimizer.
func (p Pngquant) Optimize(ctx context.Context, file, quality string) error {
	name, args := p.Command(file, quality)

	err := runner(p.Runner).Run(ctx, name, args)
	switch code := exitCode(err); code {
	case pngquantQualityTooLow, pngquantNotSmaller:
		log.Debugf("pngquant kept %s unchanged (exit %d)", file, code)
		return nil
	}
	return err
}

func runner(r Runner) Runner {
	if r == nil {
		return ExecRunner{}
	}
	return r
}
