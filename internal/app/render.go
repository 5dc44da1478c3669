package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/weftlang/weft/internal/compile"
	"github.com/weftlang/weft/internal/ir"
)

// renderTree prints the swatch graph and annotated signals human-first.
func renderTree(w io.Writer, artifacts *compile.Artifacts) error {
	root := treeprint.New()
	root.SetValue("swatches")

	for _, backendID := range artifacts.Swatches.Order {
		sw := artifacts.Swatches.Swatches[backendID]
		label := backendID
		if sw.Sink {
			label += " (sink)"
		}
		branch := root.AddBranch(label)

		bundles := branch.AddBranch("bundles")
		for _, name := range sw.Bundles {
			bundles.AddNode(fmt.Sprintf("%s [%s]", name, artifacts.Analysis.Purity(name)))
		}
		if len(sw.Inputs) > 0 {
			branch.AddMetaBranch("in", strings.Join(sw.Inputs, ", "))
		}
		if len(sw.Outputs) > 0 {
			branch.AddMetaBranch("out", strings.Join(sw.Outputs, ", "))
		}
		if deps := artifacts.Swatches.Edges[backendID]; len(deps) > 0 {
			branch.AddMetaBranch("after", strings.Join(deps, ", "))
		}
	}

	if _, err := fmt.Fprint(w, root.String()); err != nil {
		return err
	}

	sigTree := treeprint.New()
	sigTree.SetValue("signals")
	for _, bundleName := range artifacts.Program.BundleNames() {
		bundle := artifacts.Program.Bundles[bundleName]
		branch := sigTree.AddBranch(bundleName)
		for _, strand := range bundle.Strands {
			sig := artifacts.Signals[ir.Key(bundleName, strand.Name)]
			branch.AddNode(fmt.Sprintf("%s: %s", strand.Name, describeSignal(sig.Domain, sig.Hardware.Tags(), sig.Stateful)))
		}
	}
	_, err := fmt.Fprint(w, sigTree.String())
	return err
}

func describeSignal(domain ir.Domain, hardware []string, stateful bool) string {
	var parts []string
	dims := make([]string, len(domain))
	for i, d := range domain {
		dims[i] = fmt.Sprintf("%s:%s", d.Name, d.Access)
	}
	parts = append(parts, "("+strings.Join(dims, ", ")+")")
	if len(hardware) > 0 {
		parts = append(parts, "hw={"+strings.Join(hardware, ",")+"}")
	}
	if stateful {
		parts = append(parts, "stateful")
	}
	return strings.Join(parts, " ")
}

// jsonOutput is the machine-readable rendering of one compilation.
type jsonOutput struct {
	Signals  map[string]jsonSignal `json:"signals"`
	Swatches []jsonSwatch          `json:"swatches"`
	Order    []string              `json:"order"`
}

type jsonSignal struct {
	Domain   []jsonDimension `json:"domain"`
	Hardware []string        `json:"hardware,omitempty"`
	Stateful bool            `json:"stateful"`
}

type jsonDimension struct {
	Name   string `json:"name"`
	Access string `json:"access"`
}

type jsonSwatch struct {
	Backend string   `json:"backend"`
	Bundles []string `json:"bundles"`
	Inputs  []string `json:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
	Sink    bool     `json:"sink"`
	After   []string `json:"after,omitempty"`
}

func renderJSON(w io.Writer, artifacts *compile.Artifacts) error {
	out := jsonOutput{
		Signals: make(map[string]jsonSignal, len(artifacts.Signals)),
		Order:   artifacts.Swatches.Order,
	}
	for key, sig := range artifacts.Signals {
		js := jsonSignal{Hardware: sig.Hardware.Tags(), Stateful: sig.Stateful}
		for _, d := range sig.Domain {
			js.Domain = append(js.Domain, jsonDimension{Name: d.Name, Access: d.Access.String()})
		}
		out.Signals[key] = js
	}
	for _, backendID := range artifacts.Swatches.Order {
		sw := artifacts.Swatches.Swatches[backendID]
		out.Swatches = append(out.Swatches, jsonSwatch{
			Backend: sw.Backend,
			Bundles: sw.Bundles,
			Inputs:  sw.Inputs,
			Outputs: sw.Outputs,
			Sink:    sw.Sink,
			After:   artifacts.Swatches.Edges[backendID],
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
