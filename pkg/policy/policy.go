// Package policy provides the decision functions applied on top of
// package metadata: a global exclude list and, for installs, an override
// list of packages whose links may be replaced.
package policy

import (
	"github.com/arthur-debert/encap/pkg/linkinfo"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/pkgspec"
	"github.com/arthur-debert/encap/pkg/types"
)

// ExcludeDecision skips every entry whose target relative path is in
// excludes. It works for package operations and for target cleaning.
func ExcludeDecision(excludes []string) types.DecisionFunc {
	set := toSet(excludes)
	return func(h types.Handle, src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
		if _, ok := set[src.TargetRelative]; !ok {
			return types.ActionOK
		}
		kind := types.EventPkgInfo
		if h.Name() == "" {
			kind = types.EventClnInfo
		}
		h.Reportf(src, tgt, kind, "excluding")
		return types.ActionSkip
	}
}

// OverrideDecision applies the exclude list, then removes links into
// other packages listed in overrides so the install can replace them.
// An override entry matches a package directory name or its bare
// package name.
func OverrideDecision(excludes, overrides []string) types.DecisionFunc {
	exclude := ExcludeDecision(excludes)
	set := toSet(overrides)

	return func(h types.Handle, src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
		if res := exclude(h, src, tgt); res != types.ActionOK {
			return res
		}
		if !tgt.IsEncapLink() || tgt.LinkExistingPkg == h.Name() || !overridden(set, tgt.LinkExistingPkg) {
			return types.ActionOK
		}

		logger := logging.GetLogger("policy.override")
		h.Reportf(src, tgt, types.EventPkgInfo, "overriding link to package %s", tgt.LinkExistingPkg)

		if h.Options().Has(types.OptShowOnly) {
			*tgt = types.TargetInfo{}
			return types.ActionOK
		}

		if err := h.FS().Remove(src.TargetPath); err != nil {
			h.Reportf(src, tgt, types.EventInstError, "remove: %v", err)
			return types.ActionError
		}
		probed, err := linkinfo.ProbeTarget(h.FS(), h.SourceDir(), src.TargetPath)
		if err != nil {
			h.Reportf(src, tgt, types.EventInstError, "cannot check target: %v", err)
			return types.ActionError
		}
		*tgt = *probed

		logger.Debug().
			Str("package", h.Name()).
			Str("entry", src.TargetRelative).
			Msg("overridden link removed")
		return types.ActionOK
	}
}

func overridden(set map[string]struct{}, pkg string) bool {
	if _, ok := set[pkg]; ok {
		return true
	}
	spec, err := pkgspec.Parse(pkg)
	if err != nil {
		return false
	}
	_, ok := set[spec.Name]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}
