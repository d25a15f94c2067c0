package saq

import (
	"sort"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// Payment channel identifiers collected by the wizard's decision step
const (
	ChannelEcommerceOutsourced = "ecommerce_fully_outsourced"
	ChannelEcommerceRedirect   = "ecommerce_partial_redirect"
	ChannelMailTelephoneOrder  = "mail_telephone_order"
	ChannelDialoutTerminal     = "standalone_dialout_terminal"
	ChannelIPTerminal          = "standalone_ip_terminal"
	ChannelVirtualTerminal     = "virtual_terminal"
	ChannelPaymentApplication  = "payment_application_internet"
	ChannelP2PETerminal        = "validated_p2pe_terminal"
)

// channelQuestionnaires maps each payment channel to the SAQ type it implies
// #BUSINESS_RULE: Derived from the PCI SSC SAQ eligibility matrix
var channelQuestionnaires = map[string]models.QuestionnaireType{
	ChannelEcommerceOutsourced: models.QuestionnaireTypeSAQA,
	ChannelEcommerceRedirect:   models.QuestionnaireTypeSAQAEP,
	ChannelMailTelephoneOrder:  models.QuestionnaireTypeSAQA,
	ChannelDialoutTerminal:     models.QuestionnaireTypeSAQB,
	ChannelIPTerminal:          models.QuestionnaireTypeSAQBIP,
	ChannelVirtualTerminal:     models.QuestionnaireTypeSAQCVT,
	ChannelPaymentApplication:  models.QuestionnaireTypeSAQC,
	ChannelP2PETerminal:        models.QuestionnaireTypeSAQP2PE,
}

// DetermineTypes maps the decision-step answers to the set of applicable SAQ
// questionnaire types.
//
// Electronic storage of account data disqualifies a merchant from every
// reduced-scope SAQ: the result collapses to SAQ D. Unknown channels are
// ignored; no recognized channel also yields SAQ D as the safe default.
func DetermineTypes(channels []string, storesAccountData bool) []models.QuestionnaireType {
	if storesAccountData {
		return []models.QuestionnaireType{models.QuestionnaireTypeSAQD}
	}

	seen := map[models.QuestionnaireType]bool{}
	var out []models.QuestionnaireType
	for _, ch := range channels {
		qType, ok := channelQuestionnaires[ch]
		if !ok || seen[qType] {
			continue
		}
		seen[qType] = true
		out = append(out, qType)
	}

	if len(out) == 0 {
		return []models.QuestionnaireType{models.QuestionnaireTypeSAQD}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KnownChannel reports whether a channel identifier is recognized
func KnownChannel(channel string) bool {
	_, ok := channelQuestionnaires[channel]
	return ok
}
