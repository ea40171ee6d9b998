// Package config assembles the exporter settings from a .env file, an
// optional TOML options file, SCENEEXPORT_* environment variables, a JSON
// args payload and command-line flags, in that order of increasing
// precedence.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"sceneexport/internal/util/jsonutil"
)

// Publish targets.
const (
	PublishNone     = ""
	PublishMemory   = "memory"
	PublishS3       = "s3"
	PublishPostgres = "postgres"
)

type Config struct {
	Export   Options
	LogLevel slog.Level

	// Publish selects where `publish` uploads a bundle.
	Publish     string
	Artifact    ArtifactConfig
	DatabaseURL string

	// Args are the positional arguments left after the flags.
	Args []string
}

type ArtifactConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Overrides is a partial Options. Nil fields leave the target unchanged. The
// same shape is read from the TOML [export] table and the -args-json payload.
type Overrides struct {
	ProjectRoot          *string  `toml:"projectRoot" json:"projectRoot"`
	ProductName          *string  `toml:"productName" json:"productName"`
	OutputRoot           *string  `toml:"outputRoot" json:"outputRoot"`
	AssetScope           *string  `toml:"assetScope" json:"assetScope"`
	SceneSelectionMode   *string  `toml:"sceneSelectionMode" json:"sceneSelectionMode"`
	Scenes               []string `toml:"scenes" json:"scenes"`
	GenerateCpp          *bool    `toml:"generateCpp" json:"generateCpp"`
	GenerateJSON         *bool    `toml:"generateJson" json:"generateJson"`
	GenerateCppProject   *bool    `toml:"generateCppProject" json:"generateCppProject"`
	ConvertSceneToCpp    *bool    `toml:"convertSceneToCpp" json:"convertSceneToCpp"`
	CyberEngineRootPath  *string  `toml:"cyberEngineRootPath" json:"cyberEngineRootPath"`
	GeneratedProjectName *string  `toml:"generatedProjectName" json:"generatedProjectName"`
	BaseSceneClass       *string  `toml:"baseSceneClass" json:"baseSceneClass"`
	FailOnError          *bool    `toml:"failOnError" json:"failOnError"`
	CleanOutput          *bool    `toml:"cleanOutput" json:"cleanOutput"`

	// switchToExplicit moves a BuildSettings selection to Explicit when
	// Scenes is set, the way an explicit scene list on the command line does.
	switchToExplicit bool
}

// Apply copies every set, non-blank field onto o.
func (ov Overrides) Apply(o *Options) error {
	if o == nil {
		return errors.New("options are nil")
	}
	setString(&o.ProjectRoot, ov.ProjectRoot)
	setString(&o.ProductName, ov.ProductName)
	setString(&o.OutputRoot, ov.OutputRoot)
	if ov.AssetScope != nil && strings.TrimSpace(*ov.AssetScope) != "" {
		scope, err := ParseAssetScope(*ov.AssetScope)
		if err != nil {
			return err
		}
		o.AssetScope = scope
	}
	if ov.SceneSelectionMode != nil && strings.TrimSpace(*ov.SceneSelectionMode) != "" {
		mode, err := ParseSceneSelection(*ov.SceneSelectionMode)
		if err != nil {
			return err
		}
		o.SceneSelection = mode
	}
	if scenes := distinctPaths(ov.Scenes); len(scenes) > 0 {
		o.ScenePaths = scenes
		if ov.switchToExplicit && o.SceneSelection == BuildSettings {
			o.SceneSelection = Explicit
		}
	}
	setBool(&o.GenerateCpp, ov.GenerateCpp)
	setBool(&o.GenerateJSON, ov.GenerateJSON)
	setBool(&o.GenerateCppProject, ov.GenerateCppProject)
	setBool(&o.ConvertSceneToCpp, ov.ConvertSceneToCpp)
	setString(&o.CyberEngineRootPath, ov.CyberEngineRootPath)
	setString(&o.GeneratedProjectName, ov.GeneratedProjectName)
	setString(&o.BaseSceneClass, ov.BaseSceneClass)
	setBool(&o.FailOnError, ov.FailOnError)
	setBool(&o.CleanOutput, ov.CleanOutput)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// ParseArgsJSON decodes a batch args payload. Unknown keys are rejected.
func ParseArgsJSON(raw string) (Overrides, error) {
	var ov Overrides
	if strings.TrimSpace(raw) == "" {
		return ov, nil
	}
	if err := jsonutil.UnmarshalStrict([]byte(raw), &ov); err != nil {
		return Overrides{}, fmt.Errorf("decode args json: %w", err)
	}
	return ov, nil
}

type publishFile struct {
	Target   string `toml:"target"`
	Endpoint string `toml:"endpoint"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	UseSSL   *bool  `toml:"useSSL"`
}

type fileConfig struct {
	LogLevel string      `toml:"logLevel"`
	Export   Overrides   `toml:"export"`
	Publish  publishFile `toml:"publish"`
}

// readFile parses a TOML options file, rejecting unknown keys.
func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return fc, nil
}

// envOverrides reads SCENEEXPORT_* variables. SCENEEXPORT_SCENES is a
// semicolon separated list.
func envOverrides() (Overrides, error) {
	ov := Overrides{switchToExplicit: true}
	for name, dst := range map[string]**string{
		"SCENEEXPORT_PROJECT_ROOT":     &ov.ProjectRoot,
		"SCENEEXPORT_PRODUCT_NAME":     &ov.ProductName,
		"SCENEEXPORT_OUTPUT_ROOT":      &ov.OutputRoot,
		"SCENEEXPORT_ASSET_SCOPE":      &ov.AssetScope,
		"SCENEEXPORT_SCENE_SELECTION":  &ov.SceneSelectionMode,
		"SCENEEXPORT_ENGINE_ROOT":      &ov.CyberEngineRootPath,
		"SCENEEXPORT_PROJECT_NAME":     &ov.GeneratedProjectName,
		"SCENEEXPORT_BASE_SCENE_CLASS": &ov.BaseSceneClass,
	} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = &v
		}
	}
	for name, dst := range map[string]**bool{
		"SCENEEXPORT_GENERATE_CPP":         &ov.GenerateCpp,
		"SCENEEXPORT_GENERATE_JSON":        &ov.GenerateJSON,
		"SCENEEXPORT_GENERATE_CPP_PROJECT": &ov.GenerateCppProject,
		"SCENEEXPORT_CONVERT_SCENE_TO_CPP": &ov.ConvertSceneToCpp,
		"SCENEEXPORT_FAIL_ON_ERROR":        &ov.FailOnError,
		"SCENEEXPORT_CLEAN_OUTPUT":         &ov.CleanOutput,
	} {
		raw := strings.TrimSpace(os.Getenv(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Overrides{}, fmt.Errorf("%s: %w", name, err)
		}
		*dst = &v
	}
	ov.Scenes = splitScenes(os.Getenv("SCENEEXPORT_SCENES"))
	return ov, nil
}

func splitScenes(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type flagValues struct {
	configPath string
	argsJSON   string
	logLevel   string
	publish    string
	scenes     string
	ov         Overrides
}

func newFlagSet(name string) (*flag.FlagSet, *flagValues) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	v := &flagValues{ov: Overrides{switchToExplicit: true}}
	fs.StringVar(&v.configPath, "config", "", "TOML options file")
	fs.StringVar(&v.argsJSON, "args-json", "", "JSON object overriding export options")
	fs.StringVar(&v.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&v.publish, "publish", "", "publish target: memory, s3 or postgres")
	fs.StringVar(&v.scenes, "scenes", "", "semicolon separated scene paths; switches BuildSettings to Explicit")
	fs.String("project", "", "host project root")
	fs.String("product", "", "product name (bundle directory)")
	fs.String("output", "", "output root")
	fs.String("asset-scope", "", "DependenciesOnly or AllAssets")
	fs.String("scene-selection", "", "BuildSettings or Explicit")
	fs.String("engine-root", "", "CyberEngine checkout to link into the bundle")
	fs.String("project-name", "", "generated C++ project name")
	fs.String("base-scene-class", "", "base class of generated scenes")
	fs.Bool("generate-cpp", true, "generate C++ scene code")
	fs.Bool("generate-json", true, "generate scene JSON")
	fs.Bool("generate-cpp-project", true, "generate the runnable C++ project")
	fs.Bool("convert-scene-to-cpp", true, "generate one C++ class per scene")
	fs.Bool("fail-on-error", false, "return an error when the report has errors")
	fs.Bool("clean-output", true, "remove the bundle directory first")
	return fs, v
}

// collect turns the flags the user actually set into overrides.
func (v *flagValues) collect(fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		raw := f.Value.String()
		str := func(dst **string) { *dst = &raw }
		boolean := func(dst **bool) {
			b, perr := strconv.ParseBool(raw)
			if perr != nil && err == nil {
				err = fmt.Errorf("-%s: %w", f.Name, perr)
			}
			*dst = &b
		}
		switch f.Name {
		case "project":
			str(&v.ov.ProjectRoot)
		case "product":
			str(&v.ov.ProductName)
		case "output":
			str(&v.ov.OutputRoot)
		case "asset-scope":
			str(&v.ov.AssetScope)
		case "scene-selection":
			str(&v.ov.SceneSelectionMode)
		case "engine-root":
			str(&v.ov.CyberEngineRootPath)
		case "project-name":
			str(&v.ov.GeneratedProjectName)
		case "base-scene-class":
			str(&v.ov.BaseSceneClass)
		case "generate-cpp":
			boolean(&v.ov.GenerateCpp)
		case "generate-json":
			boolean(&v.ov.GenerateJSON)
		case "generate-cpp-project":
			boolean(&v.ov.GenerateCppProject)
		case "convert-scene-to-cpp":
			boolean(&v.ov.ConvertSceneToCpp)
		case "fail-on-error":
			boolean(&v.ov.FailOnError)
		case "clean-output":
			boolean(&v.ov.CleanOutput)
		}
	})
	v.ov.Scenes = splitScenes(v.scenes)
	return err
}

// Load builds the configuration for one command invocation. args excludes
// the program and subcommand names.
func Load(name string, args []string) (*Config, error) {
	_ = godotenv.Load()

	fs, fv := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := fv.collect(fs); err != nil {
		return nil, err
	}

	cfg := &Config{Export: DefaultOptions(), Args: fs.Args()}
	level := os.Getenv("SCENEEXPORT_LOG_LEVEL")
	publish := os.Getenv("SCENEEXPORT_PUBLISH")

	if path := firstNonEmpty(strings.TrimSpace(fv.configPath), strings.TrimSpace(os.Getenv("SCENEEXPORT_CONFIG"))); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := fc.Export.Apply(&cfg.Export); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		level = firstNonEmpty(level, fc.LogLevel)
		publish = firstNonEmpty(publish, fc.Publish.Target)
		cfg.Artifact = fileArtifactConfig(fc.Publish)
	}

	env, err := envOverrides()
	if err != nil {
		return nil, err
	}
	if err := env.Apply(&cfg.Export); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	argsJSON, err := ParseArgsJSON(fv.argsJSON)
	if err != nil {
		return nil, err
	}
	if err := argsJSON.Apply(&cfg.Export); err != nil {
		return nil, fmt.Errorf("args json: %w", err)
	}
	if err := fv.ov.Apply(&cfg.Export); err != nil {
		return nil, err
	}

	cfg.Export.ProductName = firstNonEmpty(cfg.Export.ProductName, productNameFromRoot(cfg.Export.ProjectRoot))

	if err := cfg.LogLevel.UnmarshalText([]byte(firstNonEmpty(fv.logLevel, level, "info"))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Publish = strings.ToLower(strings.TrimSpace(firstNonEmpty(fv.publish, publish)))
	switch cfg.Publish {
	case PublishNone, PublishMemory, PublishS3, PublishPostgres:
	default:
		return nil, fmt.Errorf("unknown publish target %q", cfg.Publish)
	}
	cfg.Artifact = loadArtifactConfig(cfg.Artifact)
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	return cfg, nil
}

func productNameFromRoot(root string) string {
	abs, err := filepath.Abs(firstNonEmpty(root, "."))
	if err != nil {
		return ""
	}
	return filepath.Base(abs)
}

func fileArtifactConfig(p publishFile) ArtifactConfig {
	ac := ArtifactConfig{Endpoint: p.Endpoint, Region: p.Region, Bucket: p.Bucket, UseSSL: true}
	if p.UseSSL != nil {
		ac.UseSSL = *p.UseSSL
	}
	return ac
}

// loadArtifactConfig layers the ARTIFACT_S3_* and MinIO variables over the
// file values.
func loadArtifactConfig(base ArtifactConfig) ArtifactConfig {
	return ArtifactConfig{
		Endpoint:  firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT")), base.Endpoint),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), base.Region, "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), base.Bucket, "sceneexport-bundles"),
		UseSSL:    resolveUseSSL(base),
	}
}

func resolveUseSSL(base ArtifactConfig) bool {
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return base.Endpoint == "" || base.UseSSL
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
