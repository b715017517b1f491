package config

// AppVersion is the version of the service, set at build time with
// -ldflags "-X github.com/dixieflatline76/UltimateThumb/config.AppVersion=v1.2.3".
var AppVersion = "dev"

// AppName is the name of the service.
const AppName = "UltimateThumb"

// RepoOwner and RepoName locate the release feed checked by "version --check".
const (
	RepoOwner = "dixieflatline76"
	RepoName  = "UltimateThumb"
)
