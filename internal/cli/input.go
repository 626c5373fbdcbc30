package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
)

// readPatient loads a patient record from a JSON or YAML file. "-" reads JSON
// from stdin.
func readPatient(path string, stdin io.Reader) (dto.PatientInput, error) {
	var p dto.PatientInput
	if path == "" {
		return p, fmt.Errorf("--input is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return p, fmt.Errorf("failed to read patient record: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	}
	if err != nil {
		return p, fmt.Errorf("failed to parse patient record %s: %w", path, err)
	}
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderExplanation prints the report a clinician sees.
func renderExplanation(w io.Writer, riskPercent string, e dto.ExplanationResponse) {
	fmt.Fprintf(w, "Estimated risk: %s%%\n", riskPercent)
	fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(e.BannerTier), e.BannerMessage)
	if e.SummaryTier != e.BannerTier {
		fmt.Fprintf(w, "Summary (%s): %s\n", e.SummaryTier, e.SummaryMessage)
	} else {
		fmt.Fprintf(w, "Summary: %s\n", e.SummaryMessage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Findings:")
	for _, f := range e.Findings {
		fmt.Fprintf(w, "  %s %-12s %s\n", polarityMark(f.Polarity), f.RuleID, f.Message)
	}
}

func polarityMark(p string) string {
	switch p {
	case "adverse":
		return "!"
	case "reassuring":
		return "+"
	default:
		return "~"
	}
}
