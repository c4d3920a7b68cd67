package render

import (
	"fmt"

	"github.com/speclite/speclite/internal/corpus"
)

// All renders the complete provisioning file set for the selected agents:
// every command file per agent (plus companion prompts where the profile
// uses them) and the shared .speclite/ tree once. Unknown agent IDs and
// unsupported renderings fail the whole pass before anything is written.
func All(c *corpus.Corpus, agentIDs []string, flavor corpus.Flavor) ([]File, error) {
	var files []File

	for _, id := range agentIDs {
		profile, ok := c.Profile(id)
		if !ok {
			return nil, fmt.Errorf("unknown agent %q (expected one of %v)", id, c.AgentIDs())
		}

		for _, cmd := range c.Commands() {
			file, err := Command(cmd, profile, flavor)
			if err != nil {
				return nil, err
			}
			files = append(files, file)

			if companion, ok := Companion(cmd, profile); ok {
				files = append(files, companion)
			}
		}
	}

	for _, entry := range c.Shared() {
		files = append(files, Shared(entry))
	}

	return files, nil
}
