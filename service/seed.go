package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
)

// contractTypeNamespace derives stable type ids from names so that reseeding
// keeps existing contracts pointing at their type.
var contractTypeNamespace = uuid.MustParse("6f1c2a4e-8b0d-4f57-9a3e-2d5c7e9b1f40")

type seedType struct {
	name        string
	description string
	fields      []string
	template    string
	validity    int
}

var catalogue = []seedType{
	{
		name:        "Employment Contract",
		description: "Legal agreement between employer and employee outlining terms of employment",
		fields: []string{
			"employerName", "employeeName", "position", "startDate", "salary",
			"paymentFrequency", "workHours", "benefitsProvided", "terminationNotice", "probationPeriod",
		},
		template: "employment_contract_template",
		validity: 12,
	},
	{
		name:        "Lease Agreement",
		description: "Contract between landlord and tenant for the rental of property",
		fields: []string{
			"landlordName", "tenantName", "propertyAddress", "leaseStartDate", "leaseEndDate",
			"monthlyRent", "securityDeposit", "petsAllowed", "utilities", "maintenanceResponsibilities",
		},
		template: "lease_agreement_template",
		validity: 12,
	},
	{
		name:        "Non-Disclosure Agreement",
		description: "Confidentiality agreement to protect sensitive information",
		fields: []string{
			"disclosingParty", "receivingParty", "purposeOfDisclosure", "definitionOfConfidential", "exclusions",
			"timeframeOfConfidentiality", "returnOfMaterials", "remediesForBreach", "governingLaw", "jurisdictionForDisputes",
		},
		template: "nda_template",
		validity: 36,
	},
	{
		name:        "Service Agreement",
		description: "Contract between service provider and client for professional services",
		fields: []string{
			"serviceProviderName", "clientName", "serviceDescription", "deliverables", "timeline",
			"paymentTerms", "totalFee", "intellectualPropertyRights", "warrantyPeriod", "terminationConditions",
		},
		template: "service_agreement_template",
		validity: 6,
	},
	{
		name:        "Purchase Agreement",
		description: "Contract for the sale and purchase of goods or property",
		fields: []string{
			"sellerName", "buyerName", "productDescription", "quantity", "unitPrice",
			"totalPurchasePrice", "deliveryDate", "deliveryLocation", "paymentMethod", "warrantyDetails",
		},
		template: "purchase_agreement_template",
		validity: 3,
	},
	{
		name:        "Partnership Agreement",
		description: "Legal agreement between two or more partners forming a business partnership",
		fields: []string{
			"partnershipName", "businessPurpose", "partnerNames", "capitalContributions", "profitSharingRatio",
			"managementStructure", "decisionMakingProcess", "addingNewPartners", "withdrawalProcess", "disputeResolutionMethod",
		},
		template: "partnership_agreement_template",
		validity: 24,
	},
}

var numberFields = map[string]bool{
	"salary":             true,
	"monthlyRent":        true,
	"securityDeposit":    true,
	"totalFee":           true,
	"quantity":           true,
	"unitPrice":          true,
	"totalPurchasePrice": true,
}

var textareaFields = map[string]bool{
	"benefitsProvided":            true,
	"maintenanceResponsibilities": true,
	"definitionOfConfidential":    true,
	"exclusions":                  true,
	"remediesForBreach":           true,
	"serviceDescription":          true,
	"deliverables":                true,
	"terminationConditions":       true,
	"productDescription":          true,
	"warrantyDetails":             true,
	"businessPurpose":             true,
	"managementStructure":         true,
	"decisionMakingProcess":       true,
	"withdrawalProcess":           true,
	"disputeResolutionMethod":     true,
}

var selectOptions = map[string][]string{
	"petsAllowed": {"yes", "no"},
}

// DefaultContractTypes returns the built-in catalogue of contract types
func DefaultContractTypes(now time.Time) []*model.ContractType {
	types := make([]*model.ContractType, 0, len(catalogue))
	for _, st := range catalogue {
		fields := make([]model.Field, 0, len(st.fields))
		for _, name := range st.fields {
			fields = append(fields, seedField(name))
		}
		types = append(types, &model.ContractType{
			ID:             uuid.NewSHA1(contractTypeNamespace, []byte(st.name)).String(),
			Name:           st.name,
			Description:    st.description,
			RequiredFields: fields,
			Template:       st.template,
			ValidityPeriod: st.validity,
			CreatedAt:      now,
		})
	}
	return types
}

// SeedContractTypes replaces every stored contract type with the catalogue
func SeedContractTypes(ctx context.Context, repo ContractTypeRepository) ([]*model.ContractType, error) {
	types := DefaultContractTypes(time.Now())
	if err := repo.ReplaceContractTypes(ctx, types); err != nil {
		return nil, fmt.Errorf("failed to seed contract types: %w", err)
	}
	logger.Info(ctx, "contract types seeded", "count", len(types))
	return types, nil
}

func seedField(name string) model.Field {
	f := model.Field{Name: name, Label: HumanizeKey(name), Kind: model.FieldText}
	switch {
	case strings.HasSuffix(name, "Date"):
		f.Kind = model.FieldDate
	case numberFields[name]:
		f.Kind = model.FieldNumber
	case textareaFields[name]:
		f.Kind = model.FieldTextarea
	case selectOptions[name] != nil:
		f.Kind = model.FieldSelect
		f.Options = selectOptions[name]
	}
	return f
}

// HumanizeKey turns a camelCase key into a title, e.g. "leaseStartDate"
// becomes "Lease Start Date".
func HumanizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
