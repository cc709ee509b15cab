package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
)

// DocumentGenerator renders a signed contract to a printable document
type DocumentGenerator interface {
	Render(d *ContractDetail, expiry time.Time) ([]byte, error)
	ContentType() string
}

// DocumentService produces, stores and serves contract documents
type DocumentService struct {
	contracts *ContractService
	storage   ObjectStorage
	generator DocumentGenerator
}

func NewDocumentService(contracts *ContractService, storage ObjectStorage, generator DocumentGenerator) *DocumentService {
	return &DocumentService{
		contracts: contracts,
		storage:   storage,
		generator: generator,
	}
}

// Generate renders the signed contract id, uploads it and records its object
// name and expiry date on the contract. Nothing is recorded on failure.
func (s *DocumentService) Generate(ctx context.Context, id string) (string, error) {
	c, err := s.contracts.load(ctx, id)
	if err != nil {
		return "", err
	}
	if c.Status != model.StatusSigned {
		return "", invalid("Only signed contracts have a document")
	}

	detail, err := s.contracts.Detail(ctx, c)
	if err != nil {
		return "", err
	}
	if detail.ContractType == nil {
		return "", notFound("Contract type not found")
	}

	issued := s.contracts.now()
	if c.IssueDate != nil {
		issued = *c.IssueDate
	}
	expiry := detail.ContractType.ExpiryFrom(issued)

	doc, err := s.generator.Render(detail, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to render contract: %w", err)
	}

	objectName := fmt.Sprintf("contracts/%s/%s/contract-%s.pdf", c.ID, uuid.New().String(), c.ID)
	if err := s.storage.UploadFile(ctx, objectName, bytes.NewReader(doc), int64(len(doc)), s.generator.ContentType()); err != nil {
		return "", err
	}

	if err := s.contracts.AttachDocument(ctx, c.ID, objectName, expiry); err != nil {
		if delErr := s.storage.DeleteFile(ctx, objectName); delErr != nil {
			logger.Warn(ctx, "failed to remove orphaned document", "object", objectName, "error", delErr)
		}
		return "", err
	}

	logger.Info(ctx, "contract document generated",
		"contract_id", c.ID,
		"object", objectName,
		"size", len(doc),
	)
	return objectName, nil
}

// DownloadURL returns a time-limited link to the document of contract id
func (s *DocumentService) DownloadURL(ctx context.Context, p Principal, id string) (string, error) {
	objectName, err := s.contracts.DocumentLocation(ctx, p, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, objectName)
}

// PDFGenerator lays contracts out as A4 PDF documents
type PDFGenerator struct {
	now func() time.Time
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{now: time.Now}
}

func (g *PDFGenerator) ContentType() string {
	return "application/pdf"
}

func (g *PDFGenerator) Render(d *ContractDetail, expiry time.Time) ([]byte, error) {
	ct := d.ContractType
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(ct.Name+" - Contract"), false)
	pdf.SetAuthor("LegalEase", false)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	heading := func(text string) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(text), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	line := func(text string) {
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "LEGAL CONTRACT AGREEMENT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(strings.ToUpper(ct.Name)), "", 1, "C", false, 0, "")

	heading("CONTRACT DETAILS")
	line("Contract ID: " + d.ID)
	if d.IssueDate != nil {
		line("Issue Date: " + d.IssueDate.Format("January 2, 2006"))
	}
	line("Expiry Date: " + expiry.Format("January 2, 2006"))

	heading("PARTIES")
	for _, party := range []struct {
		title string
		p     *model.Party
	}{
		{"CLIENT", d.Client},
		{"LAWYER", d.Lawyer},
	} {
		pdf.SetFont("Helvetica", "B", 10)
		line(party.title + ":")
		pdf.SetFont("Helvetica", "", 10)
		if party.p == nil {
			line("Not available")
			continue
		}
		line("Name: " + party.p.Name)
		line("Email: " + party.p.Email)
		if party.p.Specialization != "" {
			line("Specialization: " + party.p.Specialization)
		}
		pdf.Ln(2)
	}

	heading("CONTRACT TERMS AND CONDITIONS")
	for _, key := range termKeys(ct, d.ContractData) {
		pdf.SetFont("Helvetica", "B", 10)
		label := HumanizeKey(key) + ": "
		pdf.CellFormat(pdf.GetStringWidth(tr(label)), 5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		line(fmt.Sprint(d.ContractData[key]))
		pdf.Ln(1)
	}

	heading("LEGAL CLAUSES")
	for _, clause := range LegalClauses(ct.Name) {
		line(clause)
		pdf.Ln(2)
	}

	heading("SIGNATURES")
	for _, party := range []struct {
		title string
		p     *model.Party
		sig   string
	}{
		{"Client", d.Client, "Signed on submission"},
		{"Lawyer", d.Lawyer, model.Deref(d.Signature)},
	} {
		name := ""
		if party.p != nil {
			name = party.p.Name
		}
		line(fmt.Sprintf("%s: %s", party.title, name))
		line("Signature: " + party.sig)
		pdf.Ln(3)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "This is a legally binding document. Keep it for your records.", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Generated on "+g.now().Format(time.RFC1123), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// termKeys orders contract data by the type's fields, then any extra keys
// alphabetically.
func termKeys(ct *model.ContractType, data map[string]any) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]bool, len(data))
	for _, f := range ct.RequiredFields {
		if _, ok := data[f.Name]; ok {
			keys = append(keys, f.Name)
			seen[f.Name] = true
		}
	}
	var extra []string
	for k := range data {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

var baseClauses = []string{
	"1. ENTIRE AGREEMENT: This document constitutes the entire agreement between the parties with respect to the subject matter hereof.",
	"2. GOVERNING LAW: This Agreement shall be governed by and construed in accordance with the laws of the jurisdiction in which the service is provided, without giving effect to any choice of law or conflict of law provisions.",
	"3. AMENDMENTS: This Agreement may only be amended in writing signed by both parties.",
	"4. SEVERABILITY: If any provision of this Agreement is held to be invalid or unenforceable, such provision shall be struck and the remaining provisions shall be enforced.",
	"5. DISPUTE RESOLUTION: Any dispute arising out of or in connection with this contract shall first be attempted to be resolved through mediation before pursuing any other legal remedies.",
}

var typeClauses = map[string][]string{
	"employment contract": {
		"6. CONFIDENTIALITY: The Employee shall not, during the term of employment and thereafter, disclose to any third party any confidential information related to the Employer's business.",
		"7. NON-COMPETE: The Employee agrees not to engage in any competing business within a radius of 50 miles for a period of one year after termination of employment.",
		"8. TERMINATION: Either party may terminate this Agreement with 30 days written notice.",
	},
	"lease agreement": {
		"6. MAINTENANCE: The Landlord shall be responsible for major repairs, while the Tenant shall be responsible for minor maintenance and keeping the premises clean.",
		"7. SECURITY DEPOSIT: The Security Deposit shall be returned within 30 days of the termination of this Agreement, less any deductions for damages beyond normal wear and tear.",
		"8. SUBLETTING: The Tenant shall not assign or sublet the premises without the written consent of the Landlord.",
	},
	"non-disclosure agreement": {
		"6. DEFINITION OF CONFIDENTIAL INFORMATION: 'Confidential Information' means any information disclosed by one party to the other that is marked as confidential or would reasonably be understood to be confidential given the nature of the information and the circumstances of disclosure.",
		"7. EXCLUSIONS: Confidentiality obligations do not apply to information that was known prior to disclosure, becomes publicly available through no fault of the receiving party, or is independently developed by the receiving party.",
		"8. TERM OF CONFIDENTIALITY: The obligations of confidentiality shall survive the termination of this Agreement for a period of five (5) years.",
	},
	"service agreement": {
		"6. SCOPE OF SERVICES: The Service Provider shall perform the services outlined in this Agreement with reasonable skill, care, and diligence.",
		"7. PAYMENT TERMS: Payment shall be made within 30 days of receipt of invoice. Late payments shall incur interest at the rate of 1.5% per month.",
		"8. WARRANTIES: The Service Provider warrants that services will be performed in a professional and workmanlike manner in accordance with industry standards.",
	},
	"purchase agreement": {
		"6. TRANSFER OF TITLE: Title to the goods shall pass to the Buyer upon full payment of the purchase price.",
		"7. WARRANTIES: The Seller warrants that the goods are free from defects in materials and workmanship for a period of one year from the date of delivery.",
		"8. INSPECTION: The Buyer shall inspect the goods upon delivery and notify the Seller of any defects within 7 days.",
	},
	"partnership agreement": {
		"6. PROFIT AND LOSS: Profits and losses of the Partnership shall be divided among the Partners in proportion to their respective capital contributions.",
		"7. MANAGEMENT: Each Partner shall have an equal right in the management of the Partnership business.",
		"8. WITHDRAWAL: A Partner may withdraw from the Partnership with 90 days written notice to all other Partners.",
	},
}

var genericClauses = []string{
	"6. NOTICES: All notices required or permitted under this Agreement shall be in writing and shall be deemed delivered when delivered in person or by mail.",
	"7. ASSIGNMENT: Neither party may assign their rights or obligations under this Agreement without the prior written consent of the other party.",
	"8. FORCE MAJEURE: Neither party shall be liable for any failure or delay in performance due to circumstances beyond its reasonable control.",
}

// LegalClauses returns the standard clauses followed by those specific to
// the named contract type.
func LegalClauses(typeName string) []string {
	specific, ok := typeClauses[strings.ToLower(strings.TrimSpace(typeName))]
	if !ok {
		specific = genericClauses
	}
	return append(slices.Clone(baseClauses), specific...)
}
