package commands

import (
	"strings"

	"github.com/local/pdfsheet/internal/pagerange"
	"github.com/local/pdfsheet/internal/pipeline"
)

// parseSourceArg splits "path@spec" into a source. The suffix after the last
// '@' is only taken as a range spec when it looks like one, so paths
// containing '@' still work.
func parseSourceArg(arg string) (pipeline.Source, error) {
	if i := strings.LastIndex(arg, "@"); i > 0 {
		path, spec := arg[:i], arg[i+1:]
		if pagerange.Validate(spec) == nil {
			return pipeline.NewSource(path, spec), nil
		}
		if strings.TrimSpace(spec) != "" && !strings.ContainsAny(spec, "/\\.") {
			return pipeline.Source{}, pagerange.Validate(spec)
		}
	}
	return pipeline.NewSource(arg, pagerange.None), nil
}

func parseSources(args []string) ([]pipeline.Source, error) {
	sources := make([]pipeline.Source, 0, len(args))
	for _, a := range args {
		s, err := parseSourceArg(a)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}
