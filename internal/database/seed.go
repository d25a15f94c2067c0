package database

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// Seeder handles database seeding operations
// #SEED_DATA: SAQ question banks derived from the PCI DSS v4 questionnaire templates
type Seeder struct {
	db *mongo.Database
}

// NewSeeder creates a new database seeder
func NewSeeder(db *mongo.Database) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed operations
func (s *Seeder) SeedAll(ctx context.Context) error {
	log.Println("Starting database seeding...")

	for _, qType := range models.AllQuestionnaireTypes() {
		if err := s.SeedQuestionBank(ctx, qType); err != nil {
			return fmt.Errorf("failed to seed %s question bank: %w", qType, err)
		}
	}

	log.Println("Database seeding completed successfully")
	return nil
}

// SeedQuestionBank seeds the question bank for one SAQ type
// #SEED_DATA: Idempotent; existing banks are never overwritten
func (s *Seeder) SeedQuestionBank(ctx context.Context, qType models.QuestionnaireType) error {
	collection := s.db.Collection(models.Question{}.CollectionName())

	count, err := collection.CountDocuments(ctx, bson.M{"questionnaire_type": qType})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Question bank for %s already exists, skipping seeding", qType)
		return nil
	}

	questions := s.questionBank(qType)

	docs := make([]interface{}, len(questions))
	for i := range questions {
		questions[i].BeforeCreate()
		docs[i] = questions[i]
	}

	_, err = collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}

	log.Printf("Seeded %d questions for %s", len(questions), qType)
	return nil
}

// controlOptions returns the standard PCI DSS requirement answer options
func controlOptions() []models.AnswerOption {
	return []models.AnswerOption{
		{Value: models.AnswerValueInPlace, Label: "In Place", Order: 1},
		{Value: models.AnswerValueInPlaceWithCCW, Label: "In Place with CCW", Order: 2},
		{Value: models.AnswerValueNotApplicable, Label: "Not Applicable", Order: 3},
		{Value: models.AnswerValueNotTested, Label: "Not Tested", Order: 4},
		{Value: models.AnswerValueNotInPlace, Label: "Not in Place", Order: 5},
	}
}

// controlNotesValues lists the answer values that require supplemental notes
// #BUSINESS_RULE: CCW, N/A and Not Tested answers always need an explanation
func controlNotesValues() []string {
	return []string{
		models.AnswerValueInPlaceWithCCW,
		models.AnswerValueNotApplicable,
		models.AnswerValueNotTested,
	}
}

// requirement builds a section 2 requirement question with standard options
func requirement(qType models.QuestionnaireType, id, number, text string, order int) models.Question {
	return models.Question{
		QuestionnaireType: qType,
		QuestionID:        id,
		Text:              text,
		Number:            number,
		Kind:              models.QuestionKindRequirement,
		AnswerType:        models.AnswerTypeEnum,
		AnswerOptions:     controlOptions(),
		NotesRequiredFor:  controlNotesValues(),
		Section:           2,
		Order:             order,
	}
}

// questionBank returns the full seeded bank for one SAQ type: merchant
// details (section 1), requirements and appendix worksheets (section 2)
// and attestation (section 3).
func (s *Seeder) questionBank(qType models.QuestionnaireType) []models.Question {
	var bank []models.Question
	order := 0
	next := func() int {
		order++
		return order
	}

	// Section 1: merchant business details
	bank = append(bank,
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "company_name",
			Text:              "Company name (doing business as)",
			Number:            "1.1",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeText,
			Section:           1,
			Order:             next(),
		},
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "assessment_date",
			Text:              "Date of self-assessment completion",
			Number:            "1.2",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeDate,
			Section:           1,
			Order:             next(),
		},
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "payment_channels_in_scope",
			Text:              "Which payment channels are covered by this assessment?",
			Number:            "1.3",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeMultiselect,
			AnswerOptions: []models.AnswerOption{
				{Value: "card_present", Label: "Card-present (face-to-face)", Order: 1},
				{Value: "moto", Label: "Mail order / telephone order", Order: 2},
				{Value: "ecommerce", Label: "E-commerce", Order: 3},
			},
			Section: 1,
			Order:   next(),
		},
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "uses_service_providers",
			Text:              "Does your company use one or more third-party service providers?",
			Number:            "1.4",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeBoolean,
			Section:           1,
			Order:             next(),
		},
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "service_provider_names",
			Text:              "List the third-party service providers that store, process or transmit account data on your behalf",
			Number:            "1.5",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeArray,
			DependsOn: &models.DependsOn{
				QuestionID: "uses_service_providers",
				Equals:     "yes",
			},
			Section: 1,
			Order:   next(),
		},
	)

	// Section 2: requirements. The seeded set is representative per type;
	// the full banks are imported from the official templates at deploy time.
	bank = append(bank, s.requirementQuestions(qType, next)...)

	// Appendix worksheets (section 2)
	bank = append(bank, s.appendixQuestions(qType, next)...)

	// Raw templates carry retired duplicates; the dependency filter hides them
	bank = append(bank, models.Question{
		QuestionnaireType: qType,
		QuestionID:        "legacy_service_provider_list",
		Text:              "List of service providers (superseded)",
		Number:            "1.5",
		Kind:              models.QuestionKindRequirement,
		AnswerType:        models.AnswerTypeText,
		Section:           1,
		Order:             next(),
	})
	bank = append(bank, models.Question{
		QuestionnaireType: qType,
		QuestionID:        "summary_of_findings",
		Text:              "Summary of assessment findings",
		Number:            "S.1",
		Kind:              models.QuestionKindSummary,
		AnswerType:        models.AnswerTypeText,
		Section:           2,
		Order:             next(),
	})

	// Section 3: attestation
	bank = append(bank,
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "attestation_compliant",
			Text:              "Based on the results of this assessment, the company has demonstrated full compliance with the PCI DSS",
			Number:            "3.1",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeBoolean,
			Section:           3,
			Order:             next(),
		},
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "attestation_signatory_name",
			Text:              "Name of the executive officer signing this attestation",
			Number:            "3.2",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeText,
			Section:           3,
			Order:             next(),
		},
		models.Question{
			QuestionnaireType: qType,
			QuestionID:        "attestation_signatory_title",
			Text:              "Title of the executive officer signing this attestation",
			Number:            "3.3",
			Kind:              models.QuestionKindRequirement,
			AnswerType:        models.AnswerTypeText,
			Section:           3,
			Order:             next(),
		},
	)

	return bank
}

// requirementQuestions returns the representative section 2 requirements per type
func (s *Seeder) requirementQuestions(qType models.QuestionnaireType, next func() int) []models.Question {
	switch qType {
	case models.QuestionnaireTypeSAQA:
		return []models.Question{
			requirement(qType, "req_2_1_1", "2.1.1", "Are all vendor-supplied default accounts removed or disabled before a system is installed on the network?", next()),
			requirement(qType, "req_8_3_1", "8.3.1", "Is all user access to system components authenticated via at least one authentication factor?", next()),
			requirement(qType, "req_8_3_6", "8.3.6", "Do passwords/passphrases meet the minimum complexity requirements (12 characters, numeric and alphabetic)?", next()),
			requirement(qType, "req_12_8_1", "12.8.1", "Is a list of all third-party service providers with which account data is shared maintained?", next()),
			requirement(qType, "req_12_8_2", "12.8.2", "Are written agreements maintained with all third-party service providers?", next()),
		}
	case models.QuestionnaireTypeSAQB, models.QuestionnaireTypeSAQBIP:
		return []models.Question{
			requirement(qType, "req_3_2_1", "3.2.1", "Is account data storage kept to a minimum and is sensitive authentication data not retained after authorization?", next()),
			requirement(qType, "req_4_2_1", "4.2.1", "Is cardholder data protected with strong cryptography during transmission over open, public networks?", next()),
			requirement(qType, "req_9_4_1", "9.4.1", "Are all media with cardholder data physically secured?", next()),
			requirement(qType, "req_9_5_1", "9.5.1", "Are point-of-interaction devices protected from tampering and unauthorized substitution?", next()),
		}
	case models.QuestionnaireTypeSAQC, models.QuestionnaireTypeSAQCVT:
		return []models.Question{
			requirement(qType, "req_1_2_1", "1.2.1", "Are configuration standards for network security controls defined, implemented and maintained?", next()),
			requirement(qType, "req_2_2_1", "2.2.1", "Are configuration standards developed, implemented and maintained for all system components?", next()),
			requirement(qType, "req_5_2_1", "5.2.1", "Is an anti-malware solution deployed on all system components?", next()),
			requirement(qType, "req_6_3_1", "6.3.1", "Are security vulnerabilities identified and managed via industry-recognized sources?", next()),
		}
	case models.QuestionnaireTypeSAQP2PE:
		return []models.Question{
			requirement(qType, "req_3_2_1", "3.2.1", "Is account data storage kept to a minimum and is sensitive authentication data not retained after authorization?", next()),
			requirement(qType, "req_9_5_1", "9.5.1", "Are point-of-interaction devices managed per the P2PE instruction manual?", next()),
		}
	default: // SAQ A-EP and SAQ D carry the broadest requirement sets
		return []models.Question{
			requirement(qType, "req_1_2_1", "1.2.1", "Are configuration standards for network security controls defined, implemented and maintained?", next()),
			requirement(qType, "req_3_2_1", "3.2.1", "Is account data storage kept to a minimum and is sensitive authentication data not retained after authorization?", next()),
			requirement(qType, "req_3_5_1", "3.5.1", "Is PAN rendered unreadable anywhere it is stored?", next()),
			requirement(qType, "req_6_4_3", "6.4.3", "Are all payment page scripts managed with authorization, integrity assurance and an inventory?", next()),
			requirement(qType, "req_10_2_1", "10.2.1", "Are audit logs enabled and active for all system components and cardholder data?", next()),
			requirement(qType, "req_11_3_1", "11.3.1", "Are internal vulnerability scans performed at least once every three months?", next()),
			requirement(qType, "req_12_8_1", "12.8.1", "Is a list of all third-party service providers with which account data is shared maintained?", next()),
		}
	}
}

// appendixQuestions returns the appendix worksheet questions. Appendix B uses
// the object worksheet form (one question per field); appendices C and D use
// the schema-array form (one question holding the row schema).
func (s *Seeder) appendixQuestions(qType models.QuestionnaireType, next func() int) []models.Question {
	return []models.Question{
		{
			QuestionnaireType: qType,
			QuestionID:        "app_b_header",
			Text:              "Appendix B: Compensating Controls Worksheet",
			Number:            "B.0",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "ccw_constraints",
			Text:              "Constraints: list the constraints precluding compliance with the original requirement",
			Number:            "B.1",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "ccw_objective",
			Text:              "Objective: define the objective of the original control and the objective met by the compensating control",
			Number:            "B.2",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "ccw_identified_risk",
			Text:              "Identified risk: identify any additional risk posed by the lack of the original control",
			Number:            "B.3",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "ccw_definition",
			Text:              "Definition of compensating controls: define the compensating controls and explain how they address the objectives of the original control",
			Number:            "B.4",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "ccw_validation",
			Text:              "Validation: describe how the compensating controls were validated and tested",
			Number:            "B.5",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "ccw_maintenance",
			Text:              "Maintenance: describe the process and controls in place to maintain the compensating controls",
			Number:            "B.6",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeText,
			Section:           2,
			Order:             next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "na_explanation",
			Text:              "Appendix C: Explanation of Requirements Noted as Not Applicable",
			Number:            "C.1",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeArrayObject,
			Schema: []models.SchemaField{
				{Key: "requirement", Label: "Requirement", Required: false},
				{Key: "reason", Label: "Reason requirement is not applicable", Required: true},
			},
			Section: 2,
			Order:   next(),
		},
		{
			QuestionnaireType: qType,
			QuestionID:        "not_tested_explanation",
			Text:              "Appendix D: Explanation of Requirements Not Tested",
			Number:            "D.1",
			Kind:              models.QuestionKindAppendix,
			AnswerType:        models.AnswerTypeArrayObject,
			Schema: []models.SchemaField{
				{Key: "requirement", Label: "Requirement", Required: false},
				{Key: "reason", Label: "Reason requirement was not tested", Required: true},
			},
			Section: 2,
			Order:   next(),
		},
	}
}
