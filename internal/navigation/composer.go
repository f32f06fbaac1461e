package navigation

import (
	"sort"
	"strings"

	"github.com/frahmantamala/tenant-admin/internal/auth"
)

// BuildSidebar filters the candidate catalog down to what one principal may
// see. Pure and deterministic: identical inputs always produce an identical
// tree, and nothing is mutated.
//
// Evaluation is depth-first, children before the parent's own gates: a parent
// with at least one surviving child stays visible without re-checking its own
// module or permission, because a visible child already proves relevance.
func BuildSidebar(tenantCategory string, enabledModuleKeys []string, permissions auth.PermissionSet) []Node {
	enabled := make(map[string]struct{}, len(enabledModuleKeys))
	for _, key := range enabledModuleKeys {
		if key == "" {
			continue
		}
		enabled[strings.ToUpper(key)] = struct{}{}
	}

	return filterLevel(Catalog(), tenantCategory, enabled, permissions)
}

func filterLevel(candidates []Candidate, tenantCategory string, enabled map[string]struct{}, permissions auth.PermissionSet) []Node {
	type ranked struct {
		node  Node
		order *int
		pos   int
	}

	var survivors []ranked
	for i := range candidates {
		node, ok := filterNode(&candidates[i], tenantCategory, enabled, permissions)
		if !ok {
			continue
		}
		survivors = append(survivors, ranked{node: node, order: candidates[i].Order, pos: i})
	}

	// Explicit order ascending, unset after all explicit, declaration order
	// breaking ties.
	sort.SliceStable(survivors, func(a, b int) bool {
		ra, rb := survivors[a], survivors[b]
		switch {
		case ra.order == nil && rb.order == nil:
			return ra.pos < rb.pos
		case ra.order == nil:
			return false
		case rb.order == nil:
			return true
		case *ra.order != *rb.order:
			return *ra.order < *rb.order
		default:
			return ra.pos < rb.pos
		}
	})

	nodes := make([]Node, 0, len(survivors))
	for _, s := range survivors {
		nodes = append(nodes, s.node)
	}
	return nodes
}

func filterNode(c *Candidate, tenantCategory string, enabled map[string]struct{}, permissions auth.PermissionSet) (Node, bool) {
	if !domainAllowed(c.Domain, tenantCategory) {
		return Node{}, false
	}

	node := Node{
		Key:   c.Key,
		Label: c.Label,
		Icon:  c.Icon,
		Route: c.Route,
	}

	if len(c.Children) > 0 {
		children := filterLevel(c.Children, tenantCategory, enabled, permissions)
		if len(children) == 0 {
			// Groups exist only to structure their children.
			return Node{}, false
		}
		node.Children = children
		return node, true
	}

	if c.Module != "" {
		if _, ok := enabled[c.Module]; !ok {
			return Node{}, false
		}
	}

	// An empty permission set hides every permission-gated leaf; visibility
	// is never the permissive default.
	if c.Permission != "" && !permissions.Has(c.Permission) {
		return Node{}, false
	}

	return node, true
}
