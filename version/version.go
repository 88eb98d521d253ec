package version

// AppVersion is overridden at build time with -ldflags "-X timetracker/version.AppVersion=..."
var AppVersion = "0.1.0-dev"
