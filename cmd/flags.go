package cmd

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlag binds an already-defined flag to a viper key. Wiring mistakes
// (binding a flag that was never defined) fail at init instead of being
// silently ignored.
func bindFlag(fs *pflag.FlagSet, key, name string) {
	flag := fs.Lookup(name)
	if flag == nil {
		panic("cmd: binding undefined flag " + name)
	}
	_ = viper.BindPFlag(key, flag)
}

// addServerFlags defines the dev server flags shared by commands that
// start the server.
func addServerFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", 8080, "port to serve on")
	fs.String("host", "localhost", "host to bind to")
	bindFlag(fs, "server.port", "port")
	bindFlag(fs, "server.host", "host")
}

// addResolverFlags defines the flattening-behavior flags shared by
// commands that resolve components.
func addResolverFlags(fs *pflag.FlagSet) {
	fs.Bool("compat", false, "use the legacy containment-based dedup without cycle detection")
	bindFlag(fs, "resolver.compat", "compat")
}
