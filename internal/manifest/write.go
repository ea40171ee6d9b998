package manifest

import (
	"errors"
	"fmt"

	"sceneexport/internal/util/jsonutil"
)

// BundleWriter persists bundle-relative files.
type BundleWriter interface {
	WriteFile(name string, content []byte) error
}

// WriteJSON encodes v with two-space indentation to name.
func WriteJSON(bundle BundleWriter, name string, v any) error {
	data, err := jsonutil.MarshalNoEscapeIndent(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := bundle.WriteFile(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteGameData writes game.json and records its path on m.
func WriteGameData(bundle BundleWriter, m *Manifest) error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if err := WriteJSON(bundle, GameDataPath, BuildGameData(m)); err != nil {
		return err
	}
	m.GameDataPath = GameDataPath
	return nil
}

// WriteOutputs writes manifest.json, report.json and report.txt.
func WriteOutputs(bundle BundleWriter, r *Report, m *Manifest) error {
	if r == nil || m == nil {
		return fmt.Errorf("report and manifest are required")
	}
	if err := WriteJSON(bundle, ManifestPath, m); err != nil {
		return err
	}
	if err := WriteJSON(bundle, ReportPath, r); err != nil {
		return err
	}
	if err := bundle.WriteFile(ReportText, []byte(HumanReport(r, m))); err != nil {
		return fmt.Errorf("write %s: %w", ReportText, err)
	}
	return nil
}

// WriteFailureOutputs writes as many of the outputs as it can, continuing past
// individual failures.
func WriteFailureOutputs(bundle BundleWriter, r *Report, m *Manifest) error {
	if bundle == nil || r == nil || m == nil {
		return fmt.Errorf("report and manifest are required")
	}
	var errs []error
	if err := WriteJSON(bundle, ManifestPath, m); err != nil {
		errs = append(errs, err)
	}
	if err := WriteJSON(bundle, ReportPath, r); err != nil {
		errs = append(errs, err)
	}
	if err := bundle.WriteFile(ReportText, []byte(HumanReport(r, m))); err != nil {
		errs = append(errs, fmt.Errorf("write %s: %w", ReportText, err))
	}
	return errors.Join(errs...)
}
