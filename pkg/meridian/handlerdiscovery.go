package meridian

import (
	"io/fs"
	"path"
	"strings"
)

// ScanHandlers walks fsys looking for "<resource>/<action>.go"-shaped
// files under root and maps them to a skeleton HostDef, leaving each
// route's handler nil for the caller to fill in. This is a producer only
// (spec.md §1 "Handler discovery from a filesystem tree... specified only
// as an input producer of the config structure") — it never registers a
// handler itself.
//
// The action filename maps to an HTTP method by convention: index→GET "",
// show→GET "/:id", create→POST "", update→PUT "/:id", destroy→DELETE
// "/:id"; anything else is skipped.
func ScanHandlers(fsys fs.FS, root string) (*HostDef, error) {
	host := &HostDef{Pattern: "*"}
	resources := make(map[string]*PathDef)

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".go" {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		parts := strings.Split(rel, "/")
		if len(parts) != 2 {
			return nil
		}
		resource := parts[0]
		action := strings.TrimSuffix(parts[1], ".go")

		method, fragment := actionToRoute(action)
		if method == "" {
			return nil
		}

		pd, ok := resources[resource]
		if !ok {
			pd = &PathDef{Fragment: resource, Methods: make(map[string]*MethodDef)}
			resources[resource] = pd
			host.Routes = append(host.Routes, pd)
		}

		if fragment == "" {
			pd.Methods[method] = &MethodDef{As: resource + "_" + action}
			return nil
		}

		child := &PathDef{Fragment: fragment, Methods: make(map[string]*MethodDef)}
		child.Methods[method] = &MethodDef{As: resource + "_" + action}
		pd.Children = append(pd.Children, child)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return host, nil
}

func actionToRoute(action string) (method, fragment string) {
	switch action {
	case "index":
		return "GET", ""
	case "show":
		return "GET", ":id"
	case "create":
		return "POST", ""
	case "update":
		return "PUT", ":id"
	case "destroy":
		return "DELETE", ":id"
	default:
		return "", ""
	}
}
