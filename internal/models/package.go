package models

// PackageMetadata represents all type units found in one namespace directory
type PackageMetadata struct {
	Namespace   string                // dotted namespace
	Dir         string                // slash-separated directory relative to the source root
	PackageName string                // name of the Go package
	Components  []ComponentDescriptor // type units in source order
}

// Controllers returns the controller descriptors of the package
func (p *PackageMetadata) Controllers() []ComponentDescriptor {
	return p.filter(func(d *ComponentDescriptor) bool { return d.IsController() })
}

// Services returns the service descriptors of the package
func (p *PackageMetadata) Services() []ComponentDescriptor {
	return p.filter(func(d *ComponentDescriptor) bool { return d.IsService() })
}

// Interfaces returns the interface declarations of the package
func (p *PackageMetadata) Interfaces() []ComponentDescriptor {
	return p.filter(func(d *ComponentDescriptor) bool { return d.Kind == KindInterface })
}

// RouteCount returns the number of annotated handler methods in the package
func (p *PackageMetadata) RouteCount() int {
	n := 0
	for i := range p.Components {
		if p.Components[i].IsController() {
			n += len(p.Components[i].Routes)
		}
	}
	return n
}

func (p *PackageMetadata) filter(keep func(*ComponentDescriptor) bool) []ComponentDescriptor {
	var out []ComponentDescriptor
	for i := range p.Components {
		if keep(&p.Components[i]) {
			out = append(out, p.Components[i])
		}
	}
	return out
}
