package webclient

import (
	"fmt"
	"strings"
)

const serviceWorkerRelativePath = "_/theme/fb-service-worker.js"

// Origins holds the base URLs the client can resolve relative endpoints against.
type Origins struct {
	App       string `json:"app" yaml:"app"`
	Published string `json:"published" yaml:"published"`
	API       string `json:"api" yaml:"api"`
	Debug     bool   `json:"debug" yaml:"debug"`
}

// AppBase is the app origin in debug mode, the published origin otherwise.
func (o Origins) AppBase() string {
	if o.Debug {
		return strings.TrimRight(o.App, "/")
	}

	return strings.TrimRight(o.Published, "/")
}

func (o Origins) DefaultServiceWorkerURL() string {
	return fmt.Sprintf("%s/%s", o.AppBase(), serviceWorkerRelativePath)
}
