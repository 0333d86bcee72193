package main

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion. Install it
// with COMP_INSTALL=1 imobcontrol.
func completion(cmds []registered) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range cmds {
		fs := flag.NewFlagSet(c.cmd.Name(), flag.ContinueOnError)
		c.cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs)}
		switch c.cmd.Name() {
		case "restore":
			sub.Args = predict.Files("*.json")
		case "extract":
			sub.Args = predict.Files("*.pdf")
		}
		root.Sub[c.cmd.Name()] = sub
	}
	root.Sub["help"] = &complete.Command{Args: predict.Set(commandNames(cmds))}
	return root
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			flags[f.Name] = predict.Set{"md", "html", "pdf"}
		case "o":
			flags[f.Name] = predict.Files("*")
		default:
			if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				flags[f.Name] = predict.Nothing
			} else {
				flags[f.Name] = predict.Something
			}
		}
	})
	return flags
}

func commandNames(cmds []registered) []string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.cmd.Name())
	}
	return names
}
