package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// scenarioLines mirrors a typical service response after segmentation.
var scenarioLines = []string{
	"CertName: Acme",
	"Effective Date: 2023-08-02 06:07:00",
	"Expiration Date: 2024-08-02 06:07:00",
	"MP Name: Acme MP",
	"Effective Date: 08/01/23 00:00",
	"Expiration Date: 08/01/24 00:00",
	"Binding Certificates:",
	"Certificate 1:",
	"Certificate Status: Good",
}

func parseFragment(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body><div id=\"box\">" + fragment + "</div></body></html>"))
	require.NoError(t, err)
	var box *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && getAttr(n, "id") == "box" {
			box = n
			return
		}
		for c := n.FirstChild; c != nil && box == nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotNil(t, box)
	return box
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     []string
	}{
		{
			name:     "split on br",
			fragment: "CertName: Acme<br>Effective Date: 2023-08-02<br/>",
			want:     []string{"CertName: Acme", "Effective Date: 2023-08-02"},
		},
		{
			name:     "nested markup is flattened into the current line",
			fragment: "Certificate Status: <span class=\"ok\"><b>Good</b> ✅</span><br>Next",
			want:     []string{"Certificate Status: Good ✅", "Next"},
		},
		{
			name:     "whitespace runs collapse and empty lines drop",
			fragment: "  CertName:\n\t  Acme   Inc  <br><br>   <br>MP Name: X",
			want:     []string{"CertName: Acme Inc", "MP Name: X"},
		},
		{
			name:     "br inside nested element does not split",
			fragment: "<p>one<br>two</p><br>three",
			want:     []string{"one two", "three"},
		},
		{
			name:     "no br collapses into one line",
			fragment: "CertName: Acme <i>Effective Date:</i> 2023",
			want:     []string{"CertName: Acme Effective Date: 2023"},
		},
		{
			name:     "non breaking spaces are whitespace",
			fragment: "CertName:&nbsp;&nbsp;Acme<br>",
			want:     []string{"CertName: Acme"},
		},
		{
			name:     "empty container",
			fragment: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(parseFragment(t, tt.fragment))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLines_FindsAlertContainer(t *testing.T) {
	page := `<html><body>
		<div class="container"><form><input name="x"></form></div>
		<div class="alert alert-success" role="alert">CertName: Acme<br>MP Name: Acme MP</div>
		<div class="alert">ignored</div>
	</body></html>`

	lines, err := Lines(page)
	require.NoError(t, err)
	assert.Equal(t, []string{"CertName: Acme", "MP Name: Acme MP"}, lines)
}

func TestLines_NoAlertContainer(t *testing.T) {
	_, err := Lines(`<html><body><div class="card">nothing</div></body></html>`)
	assert.True(t, errors.Is(err, ErrNoResultBlock))
}

func TestSplitKV(t *testing.T) {
	tests := []struct {
		line  string
		name  string
		value string
	}{
		{"Effective Date: 2023-08-02 06:07:00", "Effective Date", "2023-08-02 06:07:00"},
		{"Certificate Status：  Good   ✅ ", "Certificate Status", "Good ✅"},
		{"Binding Certificates:", "Binding Certificates", ""},
		{"  Certificate 1  ", "Certificate 1", ""},
		{"a：b:c", "a", "b:c"},
		{"a:b：c", "a", "b：c"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, value := SplitKV(tt.line)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestFieldKey(t *testing.T) {
	assert.Equal(t, "certname", FieldKey(" CertName "))
	assert.Equal(t, "certname", FieldKey("ＣｅｒｔＮａｍｅ"))
	assert.Equal(t, "certificate number (hex)", FieldKey("Certificate Number (HEX)"))
}

func TestExtract_Scenario(t *testing.T) {
	res := Extract(scenarioLines)

	wantCert := FieldRecord{
		FieldCertName:   "Acme",
		FieldEffective:  "2023-08-02 06:07:00",
		FieldExpiration: "2024-08-02 06:07:00",
		FieldStatus:     "Good",
	}
	wantProfile := FieldRecord{
		FieldProfileName: "Acme MP",
		FieldEffective:   "08/01/23 00:00",
		FieldExpiration:  "08/01/24 00:00",
	}
	wantBinding := FieldRecord{FieldStatus: "Good"}

	if diff := cmp.Diff(wantCert, res.Certificate); diff != "" {
		t.Errorf("certificate mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantProfile, res.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantBinding, res.Binding); diff != "" {
		t.Errorf("binding mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, scenarioLines, res.Lines)
}

func TestExtract_BindingScopedToFirstCertificate(t *testing.T) {
	lines := []string{
		"CertName: Acme",
		"Certificate Status: Revoked ❌",
		"MP Name: Acme MP",
		"Binding Certificates：",
		"Certificate 1：",
		"Certificate Status: Good",
		"Certificate Number (Hex): 0A1B",
		"Certificate 2:",
		"Certificate Status: Revoked",
		"Certificate Number (Hex): FFFF",
	}

	res := Extract(lines)

	assert.Equal(t, "Revoked ❌", res.Certificate.Value(FieldStatus))
	assert.Equal(t, "Good", res.Binding.Value(FieldStatus))
	assert.Equal(t, "0A1B", res.Binding.Value(FieldSerialHex))
}

func TestExtract_MissingBlocksLeaveFieldsAbsent(t *testing.T) {
	res := Extract([]string{"Something else entirely", "Effective Date: 2023-01-01"})

	_, ok := res.Certificate.Get(FieldEffective)
	assert.False(t, ok)
	assert.Empty(t, res.Profile)
	assert.Empty(t, res.Binding)
}

func TestExtract_EmptyValueIsDistinctFromAbsent(t *testing.T) {
	res := Extract([]string{"CertName: Acme", "Expiration Date:", "MP Name: X"})

	v, ok := res.Certificate.Get(FieldExpiration)
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = res.Certificate.Get(FieldEffective)
	assert.False(t, ok)
}

func TestExtract_CertificateBlockEndsAtBindingWithoutProfile(t *testing.T) {
	lines := []string{
		"CertName: Acme",
		"Effective Date: 2023-01-01",
		"Binding Certificates:",
		"Certificate 1:",
		"Effective Date: 1999-01-01",
	}

	res := Extract(lines)

	assert.Equal(t, "2023-01-01", res.Certificate.Value(FieldEffective))
	assert.Empty(t, res.Profile)
}

func TestExtract_StatusFallbackTakesFirstNonEmptyAnywhere(t *testing.T) {
	lines := []string{
		"certificate status: ",
		"CertName: Acme",
		"MP Name: Acme MP",
		"Certificate Status: Active",
		"Certificate Status: Revoked",
	}

	res := Extract(lines)

	assert.Equal(t, "Active", res.Certificate.Value(FieldStatus))
}

func TestExtract_HeaderOrderInverted(t *testing.T) {
	// Profile header before the certificate header: the certificate block
	// range is empty rather than a panic.
	lines := []string{"MP Name: X", "Effective Date: 2023-01-01", "CertName: Acme"}

	res := Extract(lines)

	_, ok := res.Certificate.Get(FieldCertName)
	assert.False(t, ok)
	assert.Equal(t, "2023-01-01", res.Profile.Value(FieldEffective))
}

func TestParse_EndToEnd(t *testing.T) {
	page := `<div class="alert alert-info">` + strings.Join(scenarioLines, "<br>") + `</div>`

	res, err := Parse(page)
	require.NoError(t, err)
	assert.Equal(t, "Acme MP", res.Profile.Value(FieldProfileName))
	assert.Equal(t, "Good", res.Binding.Value(FieldStatus))
}
