package conversation

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"text/template"
	"time"

	"github.com/m3rciful/insurancebot/internal/domain"
)

const notProvided = "Not provided"

var policyTemplate = template.Must(template.New("policy").Parse(`CAR INSURANCE POLICY
Policy Number: {{.Number}}
Issue Date: {{.IssueDate}}

INSURED DETAILS
Full Name: {{.FullName}}
Document ID: {{.DocumentID}}
Address: {{.Address}}

VEHICLE DETAILS
Make and Model: {{.MakeModel}}
Vehicle ID/VIN: {{.VIN}}
Year: {{.Year}}

COVERAGE DETAILS
Type: Comprehensive Car Insurance
Coverage Period: 12 months from issue date
Premium Amount: {{.PriceUSD}} USD
Coverage Includes:
- Third Party Liability (up to $100,000)
- Collision Damage
- Natural Disasters
- Theft Protection
- 24/7 Roadside Assistance

TERMS AND CONDITIONS
1. This policy is valid for 12 months from the issue date
2. Claims must be reported within 24 hours of incident
3. Deductible: $500 per claim
4. Policy is non-transferable
5. Coverage is valid within the territory of operation

For assistance, contact:
Phone: +1-800-INSURE
Email: support@carinsurance.com
---END OF POLICY---`))

// Policy is a rendered insurance policy.
type Policy struct {
	Number string
	Text   string
}

type policyData struct {
	Number     string
	IssueDate  string
	FullName   string
	DocumentID string
	Address    string
	MakeModel  string
	VIN        string
	Year       string
	PriceUSD   int
}

// PolicyNumber formats POL-<year>-<6 digits> from |n| modulo one million.
func PolicyNumber(issued time.Time, n int) string {
	digits := n % 1_000_000
	if digits < 0 {
		digits = -digits
	}
	return fmt.Sprintf("POL-%d-%06d", issued.Year(), digits)
}

func orNotProvided(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notProvided
	}
	return s
}

// RenderPolicy fills the policy template from the two extracted documents.
func RenderPolicy(issued time.Time, digits int, priceUSD int, passport, vehicle domain.Document) (Policy, error) {
	data := policyData{
		Number:    PolicyNumber(issued, digits),
		IssueDate: issued.Format("2006-01-02"),
		PriceUSD:  priceUSD,
	}
	if p := passport.Passport; p != nil {
		data.FullName = p.FullName()
		data.DocumentID = p.DocumentID
		data.Address = p.Address
	}
	if v := vehicle.Vehicle; v != nil {
		data.MakeModel = strings.TrimSpace(v.Make + " " + v.Model)
		data.VIN = v.VIN
		data.Year = v.Year
	}
	data.FullName = orNotProvided(data.FullName)
	data.DocumentID = orNotProvided(data.DocumentID)
	data.Address = orNotProvided(data.Address)
	data.MakeModel = orNotProvided(data.MakeModel)
	data.VIN = orNotProvided(data.VIN)
	data.Year = orNotProvided(data.Year)

	var b strings.Builder
	if err := policyTemplate.Execute(&b, data); err != nil {
		return Policy{}, fmt.Errorf("render policy: %w", err)
	}
	return Policy{Number: data.Number, Text: b.String()}, nil
}

func randomDigits() int {
	return rand.IntN(1_000_000)
}
