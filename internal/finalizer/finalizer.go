// Package finalizer selects the endpoints that make it into the output,
// orders them and emits the two JSON documents.
package finalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"

	"apidoc/internal/domain"
)

// SpecificationVersion identifies the shape of the emitted JSON. It changes
// independently of the tool's release version.
const SpecificationVersion = "0.2.0"

// LineTerminator is the canonical line terminator of both output texts.
const LineTerminator = "\r\n"

// Endpoints drops template units, keeping endpoints in their input order.
func Endpoints(units []*domain.DocUnit) []*domain.DocUnit {
	out := make([]*domain.DocUnit, 0, len(units))
	for _, u := range units {
		if u.Kind == domain.KindEndpoint {
			out = append(out, u)
		}
	}
	return out
}

// Finalize removes private endpoints when asked to, rejects duplicates and
// returns the endpoints in output order.
func Finalize(endpoints []*domain.Endpoint, excludePrivate bool) ([]*domain.Endpoint, error) {
	seen := make(map[[3]string]*domain.Endpoint, len(endpoints))
	out := make([]*domain.Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		if excludePrivate && ep.Private {
			continue
		}
		k := [3]string{ep.Group, ep.Name, ep.Version}
		if prev, ok := seen[k]; ok {
			return nil, &domain.DuplicateEndpointError{
				Location: domain.Location{File: ep.Filename, Block: ep.Name},
				Group:    ep.Group,
				Name:     ep.Name,
				Version:  ep.Version,
				Previous: prev.Filename,
			}
		}
		seen[k] = ep
		out = append(out, ep)
	}
	Sort(out)
	return out, nil
}

// Sort orders endpoints by group+name ascending, then by version descending.
// Endpoints that compare equal keep their relative order.
func Sort(endpoints []*domain.Endpoint) {
	sort.SliceStable(endpoints, func(i, j int) bool {
		a, b := endpoints[i], endpoints[j]
		ka, kb := a.Group+a.Name, b.Group+b.Name
		if ka != kb {
			return ka < kb
		}
		return compareVersions(a.Version, b.Version) > 0
	})
}

func compareVersions(a, b string) int {
	if a == b {
		return 0
	}
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		// Unparseable versions never reach here from the pipeline; keep the
		// order total anyway.
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	return va.Compare(vb)
}

// Project stamps the specification version and generator into the metadata.
func Project(meta domain.ProjectMetadata, gen domain.Generator) domain.ProjectMetadata {
	meta.APIDoc = SpecificationVersion
	meta.Generator = gen
	return meta
}

// Serialize renders the endpoint array and the project object as
// pretty-printed JSON with canonical line terminators.
func Serialize(endpoints []*domain.Endpoint, project domain.ProjectMetadata) (string, string, error) {
	if endpoints == nil {
		endpoints = []*domain.Endpoint{}
	}
	data, err := encode(endpoints)
	if err != nil {
		return "", "", fmt.Errorf("encode endpoints: %w", err)
	}
	proj, err := encode(project)
	if err != nil {
		return "", "", fmt.Errorf("encode project: %w", err)
	}
	return data, proj, nil
}

var lineBreaks = regexp.MustCompile(`\r\n|\n|\r`)

func encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return lineBreaks.ReplaceAllString(string(out), LineTerminator), nil
}
