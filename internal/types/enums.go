package types

type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

type Flavor string

const (
	FlavorNone Flavor = ""
	FlavorDev  Flavor = "dev"
	FlavorProd Flavor = "prod"
)

// Dev reports whether bundles of this flavor carry the dev flag.
func (f Flavor) Dev() bool {
	return f == FlavorDev
}

type MetadataKind string

const (
	MetadataKindPackage MetadataKind = "packages"
	MetadataKindSession MetadataKind = "sessions"
)

type IntentKind string

const (
	IntentNone        IntentKind = ""
	IntentOpenMenu    IntentKind = "open-menu"
	IntentOpenPackage IntentKind = "open-package"
	IntentOpenSession IntentKind = "open-session"
)

type ExitPolicyMode string

const (
	ExitPolicyOnSuccess ExitPolicyMode = "on-success"
	ExitPolicyAlways    ExitPolicyMode = "always"
)
