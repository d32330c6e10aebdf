// Package extract turns the verification service's result markup into
// ordered text lines and pulls typed fields out of its three blocks: the
// certificate, the mobile provisioning profile and the first binding
// certificate.
//
// Extraction degrades instead of failing: a missing block or field is simply
// absent from the corresponding FieldRecord.
package extract

import "strings"

// Field keys. A line is assigned to a key when its FieldKey starts with it.
const (
	FieldCertName    = "certname"
	FieldProfileName = "mp name"
	FieldEffective   = "effective date"
	FieldExpiration  = "expiration date"
	FieldStatus      = "certificate status"
	FieldSerialHex   = "certificate number (hex)"
)

// Block header labels as printed by the service.
const (
	labelCertificate = "CertName"
	labelProfile     = "MP Name"
	labelBinding     = "Binding Certificates"
	labelFirstBound  = "Certificate 1"
	labelSecondBound = "Certificate 2"
)

var (
	certificateFields = []string{FieldCertName, FieldEffective, FieldExpiration, FieldStatus}
	profileFields     = []string{FieldProfileName, FieldEffective, FieldExpiration}
	bindingFields     = []string{FieldStatus, FieldSerialHex}
)

// FieldRecord maps field keys to cleaned values. A missing key means the
// field was not found; an empty value means it was found empty.
type FieldRecord map[string]string

// Get returns the value for key and whether it was found.
func (r FieldRecord) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (r FieldRecord) Value(key string) string {
	return r[key]
}

// ParsedResult is everything extracted from one response.
type ParsedResult struct {
	Certificate FieldRecord
	Profile     FieldRecord
	Binding     FieldRecord

	// Lines is the segmented input, kept for diagnostics.
	Lines []string
}

// Parse segments markup and extracts its blocks.
func Parse(markup string) (*ParsedResult, error) {
	lines, err := Lines(markup)
	if err != nil {
		return nil, err
	}
	return Extract(lines), nil
}

// Extract reads the certificate, provisioning-profile and binding blocks
// from lines.
//
// The certificate block runs from its header to the profile header (or the
// binding header, or the end). The profile block runs to the binding
// header. Binding fields are only read between "Certificate 1" and
// "Certificate 2". When the certificate block has no usable status, the
// first non-empty "Certificate Status" line anywhere is adopted.
func Extract(lines []string) *ParsedResult {
	res := &ParsedResult{
		Certificate: FieldRecord{},
		Profile:     FieldRecord{},
		Binding:     FieldRecord{},
		Lines:       lines,
	}

	certIdx := findHeader(lines, labelCertificate, 0)
	profileIdx := findHeader(lines, labelProfile, 0)
	bindingIdx := findHeader(lines, labelBinding, max(profileIdx, 0))

	if certIdx >= 0 {
		end := len(lines)
		switch {
		case profileIdx >= 0:
			end = profileIdx
		case bindingIdx >= 0:
			end = bindingIdx
		}
		readFields(res.Certificate, span(lines, certIdx, end), certificateFields)
	}

	if profileIdx >= 0 {
		end := len(lines)
		if bindingIdx >= 0 {
			end = bindingIdx
		}
		readFields(res.Profile, span(lines, profileIdx, end), profileFields)
	}

	if bindingIdx >= 0 {
		if first := findHeader(lines, labelFirstBound, bindingIdx); first >= 0 {
			end := findHeader(lines, labelSecondBound, first+1)
			if end < 0 {
				end = len(lines)
			}
			readFields(res.Binding, span(lines, first+1, end), bindingFields)
		}
	}

	if res.Certificate.Value(FieldStatus) == "" {
		for _, ln := range lines {
			if !strings.HasPrefix(strings.ToLower(ln), FieldStatus) {
				continue
			}
			if _, v := SplitKV(ln); v != "" {
				res.Certificate[FieldStatus] = v
				break
			}
		}
	}

	return res
}

// headerPrefixes lists the spellings a block header may take.
func headerPrefixes(label string) []string {
	return []string{label + ":", label + "：", label}
}

// findHeader returns the index of the first line at or after start whose
// trimmed text begins with a spelling of label, or -1.
func findHeader(lines []string, label string, start int) int {
	prefixes := headerPrefixes(label)
	for i := start; i < len(lines); i++ {
		ln := strings.TrimSpace(lines[i])
		for _, p := range prefixes {
			if strings.HasPrefix(ln, p) {
				return i
			}
		}
	}
	return -1
}

// span is lines[from:to], empty when the range is inverted.
func span(lines []string, from, to int) []string {
	if from < 0 || to > len(lines) || from >= to {
		return nil
	}
	return lines[from:to]
}

// readFields stores the value of each line whose key starts with one of
// keys. Later lines overwrite earlier ones.
func readFields(rec FieldRecord, lines []string, keys []string) {
	for _, ln := range lines {
		name, value := SplitKV(ln)
		lk := FieldKey(name)
		for _, k := range keys {
			if strings.HasPrefix(lk, k) {
				rec[k] = value
				break
			}
		}
	}
}
