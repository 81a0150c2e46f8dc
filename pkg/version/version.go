package version

// Version is the released version of wikigame.
const Version = "v0.4.2"
