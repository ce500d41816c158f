package main

import (
	"fmt"
	"io"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/feature"
	"github.com/chazu/paracad/pkg/kernel"
	"github.com/chazu/paracad/pkg/kernel/sdfx"
	"github.com/chazu/paracad/pkg/metrics"
	"github.com/chazu/paracad/pkg/tessellate"
)

func newDemoCmd(params *rootParams) *cobra.Command {
	var fail bool
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a padded and pocketed block, recompute it and mesh the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), params, fail)
		},
	}
	demoCmd.Flags().BoolVar(&fail, "fail", false, "break the base sketch to show failure propagation")
	return demoCmd
}

func runDemo(out io.Writer, params *rootParams, fail bool) error {
	k := sdfx.New(params.cfg.KernelOptions()...)
	reg, err := feature.NewRegistry(k)
	if err != nil {
		return errors.Trace(err)
	}
	collector := metrics.NewMetricsCollector()
	opts := append(params.cfg.DocumentOptions(), document.WithObserver(collector))
	doc := document.New("Demo", reg, opts...)

	if err := buildBlock(doc); err != nil {
		return errors.Annotate(err, "building demo document")
	}
	if fail {
		if err := doc.Object("Sketch").Set("Width", 0.0); err != nil {
			return errors.Trace(err)
		}
	}

	report, err := doc.Recompute()
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintln(out, report)

	mesher, err := tessellate.New(k, params.cfg.MeshCacheSize)
	if err != nil {
		return errors.Trace(err)
	}
	meshes, err := mesher.Tessellate(doc)
	if err != nil {
		return errors.Trace(err)
	}
	if len(meshes) == 0 {
		fmt.Fprintln(out, "no meshes")
	}
	for _, m := range meshes {
		fmt.Fprintf(out, "mesh %s: %d vertices, %d triangles", m.Object, m.VertexCount(), m.TriangleCount())
		if s, ok := feature.SolidOf(doc.Object(m.Object)); ok {
			fmt.Fprintf(out, ", bounding volume %g", kernel.Volume(s))
		}
		fmt.Fprintln(out)
	}

	t := collector.Totals()
	fmt.Fprintf(out, "metrics: %g passes, %g objects created, %g property changes, %g failing\n",
		t.Passes, t.Created, t.PropertyChanges, t.Failing)
	return nil
}

// buildBlock creates a body holding a 20x10 pad whose length follows the
// sketch width, with a round pocket in its top face.
func buildBlock(doc *document.Document) error {
	add := func(typ, name string, props map[string]any) (*document.Object, error) {
		o, err := doc.AddObject(typ, name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, k := range sortedKeys(props) {
			if err := o.Set(k, props[k]); err != nil {
				return nil, errors.Trace(err)
			}
		}
		return o, nil
	}

	bodyObj, err := add(feature.TypeBody, "Body", nil)
	if err != nil {
		return err
	}
	body, err := document.AsContainer(bodyObj)
	if err != nil {
		return errors.Trace(err)
	}
	sketch, err := add(feature.TypeSketch, "Sketch", map[string]any{"Width": 20.0, "Height": 10.0})
	if err != nil {
		return err
	}
	if err := body.AddMember(sketch); err != nil {
		return errors.Trace(err)
	}
	pad, err := add(feature.TypePad, "Pad", map[string]any{"Profile": sketch})
	if err != nil {
		return err
	}
	if err := pad.SetExpression("Length", `(/ (ref "Sketch" "Width") 2)`); err != nil {
		return errors.Trace(err)
	}
	if err := body.InsertFeature(pad); err != nil {
		return errors.Trace(err)
	}
	hole, err := add(feature.TypeSketch, "HoleSketch", map[string]any{
		"Shape": feature.ShapeCircle, "Radius": 3.0, "Z": 10.0,
	})
	if err != nil {
		return err
	}
	if err := body.AddMember(hole); err != nil {
		return errors.Trace(err)
	}
	pocket, err := add(feature.TypePocket, "Pocket", map[string]any{"Profile": hole, "Length": 5.0})
	if err != nil {
		return err
	}
	return errors.Trace(body.InsertFeature(pocket))
}
