package config

import (
	"flag"
	"io"

	"todoapi/internal/activity/repository"
	"todoapi/pkg/console"
)

// PrintUsage writes the --help text for fs. Short and long spellings of the
// same flag share one line.
func PrintUsage(w io.Writer, fs *flag.FlagSet) {
	describe := func(name string) (string, string) {
		f := fs.Lookup(name)
		if f == nil {
			return "", ""
		}
		return f.Usage, f.DefValue
	}

	portUsage, portDefault := describe("port")
	configUsage, _ := describe("config")
	dataUsage, _ := describe("data")

	console.Usage(w, "todoapi - activity list HTTP service", "todoapi [options]", []console.Option{
		{Names: "-p, --port <PORT>", Description: portUsage, Default: portDefault},
		{Names: "--config <path>", Description: configUsage, Default: DefaultConfigFile + " if present"},
		{Names: "--data <path>", Description: dataUsage, Default: repository.DefaultDataFile},
		{Names: "-h, --help", Description: "Print this help and exit"},
	})
}
