package genapidoc

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/cli"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"gopkg.in/yaml.v3"
)

type ApiDocCfg struct {
	AppName    string `validate:"required"`
	AppVersion string `validate:"required"`
}

type ApiDoc struct {
	Config ApiDocCfg

	flags     *flag.FlagSet
	outDir    string
	serverURL string
}

var _ cli.Command = (*ApiDoc)(nil)

func NewApiDocCmd(cfg ApiDocCfg) (*ApiDoc, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("genapidocs: validation error: %w", err)
		return nil, err
	}

	a := &ApiDoc{Config: cfg}
	a.flags = flag.NewFlagSet("apidoc", flag.ContinueOnError)
	a.flags.StringVar(&a.outDir, "out", "assets/apidoc", "Directory to write openapi.json and openapi.yaml")
	a.flags.StringVar(&a.serverURL, "server", "http://localhost:1234", "Server URL listed in the document")
	return a, nil
}

func (a *ApiDoc) Help() string {
	return `Usage: fcmpush apidoc [-out assets/apidoc] [-server http://localhost:1234]

  Generates the OpenAPI 3 document of the HTTP API as JSON and YAML.`
}

func (a *ApiDoc) Synopsis() string {
	return "Generate the OpenAPI document of the HTTP API"
}

// Run writes the document. Every response follows respbuilder.HTTPSuccess or respbuilder.HTTPError.
func (a *ApiDoc) Run(args []string) int {
	if err := a.flags.Parse(args); err != nil {
		log.Println(err)
		return 1
	}

	ctx := context.Background()
	doc, err := Generate(ctx, a.Config.AppName, a.Config.AppVersion, a.serverURL)
	if err != nil {
		log.Println(err)
		return 1
	}

	j, err := doc.MarshalJSON()
	if err != nil {
		log.Println(fmt.Errorf("cannot marshal openapi3 doc: %w", err))
		return 1
	}

	var i interface{}
	if err = json.Unmarshal(j, &i); err != nil {
		log.Println(fmt.Errorf("cannot unmarshal openapi3 doc: %w", err))
		return 1
	}

	y, err := yaml.Marshal(i)
	if err != nil {
		log.Println(fmt.Errorf("cannot marshal YAML openapi3 doc: %w", err))
		return 1
	}

	if err = WriteFile(j, filepath.Join(a.outDir, "openapi.json")); err != nil {
		log.Println(err)
		return 1
	}

	if err = WriteFile(y, filepath.Join(a.outDir, "openapi.yaml")); err != nil {
		log.Println(err)
		return 1
	}

	log.Printf("apidoc written to %s", a.outDir)
	return 0
}

// Generate builds and validates the document for every registered route.
func Generate(ctx context.Context, title, version, serverURL string) (*openapi3.T, error) {
	components := openapi3.Components{
		Schemas:       openapi3.Schemas{},
		RequestBodies: openapi3.RequestBodies{},
		Responses:     openapi3.Responses{},
	}

	errSchema, err := schemaFromExample(exampleError(ctx))
	if err != nil {
		return nil, err
	}

	components.Schemas["HTTPError"] = openapi3.NewSchemaRef("", errSchema)

	paths := openapi3.Paths{}
	for _, r := range routes(ctx) {
		if err = r.register(components, paths); err != nil {
			return nil, fmt.Errorf("route %s %s: %w", r.Method, r.Path, err)
		}
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       title,
			Description: "FCM webpush gateway: send messages, manage device tokens and topics, bootstrap browser clients.",
			Version:     version,
		},
		Servers:    openapi3.Servers{{URL: serverURL}},
		Components: components,
		Paths:      paths,
	}

	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi3 doc: %w", err)
	}

	return doc, nil
}

// WriteFile creates the parent directory and overwrites fileName.
func WriteFile(content []byte, fileName string) error {
	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fileName, content, 0o644); err != nil {
		return fmt.Errorf("cannot write file %s: %w", fileName, err)
	}

	return nil
}
