package normalizer

import (
	"fmt"

	"apidoc/internal/domain"
)

// render applies the rich-text collaborator to every description-like field.
func (n *Normalizer) render(u *domain.DocUnit, ep *domain.Endpoint) error {
	if n.renderer == nil {
		return nil
	}
	targets := []*string{&ep.Description, &ep.GroupDescription}
	for i := range ep.Permission {
		targets = append(targets, &ep.Permission[i].Description)
	}
	for _, sec := range sectionsOf(ep) {
		for _, fg := range sec.fields.Fields {
			for i := range fg.Fields {
				targets = append(targets, &fg.Fields[i].Description)
			}
		}
	}
	if ep.Deprecated != nil {
		targets = append(targets, &ep.Deprecated.Content)
	}

	for _, t := range targets {
		if *t == "" {
			continue
		}
		out, err := n.renderer.Render(*t)
		if err != nil {
			return &domain.NormalizationError{
				Location: domain.LocationOf(u, u.Header),
				Msg:      fmt.Sprintf("rendering text failed: %v", err),
			}
		}
		*t = out
	}
	return nil
}
