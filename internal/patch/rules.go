package patch

import (
	"regexp"

	"github.com/halcyon-systems/idshift/internal/version"
)

// RuleSet is an ordered rule list gated on an installed-version range.
// The exact-text rules are pinned to specific upstream builds; keying
// them by version range is what keeps a rule set from silently doing
// nothing against a build it was never written for.
type RuleSet struct {
	Name       string
	MinVersion string
	MaxVersion string
	Rules      []Rule
}

// AppliesTo reports whether the set targets the installed version. Sets
// with no bounds apply to every build.
func (rs RuleSet) AppliesTo(installed string) (bool, error) {
	if rs.MinVersion == "" && rs.MaxVersion == "" {
		return true, nil
	}
	return version.InRange(installed, rs.MinVersion, rs.MaxVersion)
}

// Minified sites in workbench.desktop.main.js. The identifiers (B, k, D,
// Ln, ...) are whatever the upstream bundler emitted for a given build;
// a miss on one variant usually means a hit on the other.
const (
	upgradeButtonA = `B(k,D(Ln,{title:"Upgrade to Pro",size:"small",get codicon(){return A.rocket},get onClick(){return t.pay}}),null)`
	upgradeStubA   = `B(k,D(Ln,{title:"Pro",size:"small",get codicon(){return A.rocket},get onClick(){return function(){}}}),null)`

	upgradeButtonB = `M(x,I(as,{title:"Upgrade to Pro",size:"small",get codicon(){return $.rocket},get onClick(){return t.pay}}),null)`
	upgradeStubB   = `M(x,I(as,{title:"Pro",size:"small",get codicon(){return $.rocket},get onClick(){return function(){}}}),null)`

	tokenLimitFind    = `async getEffectiveTokenLimit(e){const n=e.modelName;if(!n)return 2e5;`
	tokenLimitReplace = `async getEffectiveTokenLimit(e){return 9000000;const n=e.modelName;if(!n)return 9e5;`
)

// WorkbenchRules returns the UI rule set applied to
// workbench.desktop.main.js during a reset. Not version-bounded: each
// rule no-ops against builds that lack its site.
func WorkbenchRules() RuleSet {
	return RuleSet{
		Name: "workbench",
		Rules: []Rule{
			TextRule{Label: "upgrade-button", Find: upgradeButtonA, Replace: upgradeStubA},
			TextRule{Label: "upgrade-button-alt", Find: upgradeButtonB, Replace: upgradeStubB},
			TextRule{Label: "trial-badge", Find: `<div>Pro Trial`, Replace: `<div>Pro`},
			TextRule{Label: "token-limit", Find: tokenLimitFind, Replace: tokenLimitReplace},
			TextRule{Label: "pro-settings-note", Find: `var DWr=ne("<div class=settings__item_description>You are currently signed in with <strong></strong>.");`, Replace: `var DWr=ne("<div class=settings__item_description>You are currently signed in with <strong></strong>. <h1>Pro</h1>");`},
			TextRule{Label: "hide-toasts", Find: `notifications-toasts`, Replace: `notifications-toasts hidden`},
		},
	}
}

// TokenLimitRules returns just the token-limit rule, for the standalone
// bypass command.
func TokenLimitRules() RuleSet {
	return RuleSet{
		Name: "token-limit",
		Rules: []Rule{
			TextRule{Label: "token-limit", Find: tokenLimitFind, Replace: tokenLimitReplace},
		},
	}
}

var (
	machineIDPattern    = regexp.MustCompile(`async getMachineId\(\)\{return [^?]+\?\?([^}]+)\}`)
	macMachineIDPattern = regexp.MustCompile(`async getMacMachineId\(\)\{return [^?]+\?\?([^}]+)\}`)
)

// MachineIDRules returns the main.js rewrite that drops the OS machine-id
// probe and keeps only its fallback expression. Builds before 0.45.0 read
// the id differently, so the set is floor-gated.
func MachineIDRules() RuleSet {
	return RuleSet{
		Name:       "machine-id",
		MinVersion: "0.45.0",
		Rules: []Rule{
			RegexRule{Label: "get-machine-id", Pattern: machineIDPattern, Replace: `async getMachineId(){return $1}`},
			RegexRule{Label: "get-mac-machine-id", Pattern: macMachineIDPattern, Replace: `async getMacMachineId(){return $1}`},
		},
	}
}
