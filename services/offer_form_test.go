package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var staffUser = CurrentUser{ID: "u1", Name: "Asha", Role: RoleStaff}
var adminUser = CurrentUser{ID: "u2", Name: "Ravi", Role: RoleAdmin}

func completeOffer() OfferForm {
	return OfferForm{
		Title:      "Supply of transformers",
		TenderID:   "tender1",
		CustomerID: "customer1",
		OfferDate:  "2026-05-04",
		WorkItems: []WorkItem{
			{Key: "a", Description: "Transformer 250 kVA", BasicRate: 100000, TaxRate: 18},
			{Key: "b", Description: "Installation", BasicRate: 50000, TaxRate: 0},
		},
		EMD: EMDDetails{
			Amount:       3360,
			PaymentMode:  "DD",
			ValidityDays: 90,
		},
		Approver: "Manager",
	}
}

func newController(t *testing.T, mode FormMode, initial OfferForm, user CurrentUser) *OfferFormController {
	t.Helper()
	state := NewOfferFormState(mode, "", initial, DefaultEMDPercent)
	return NewOfferFormController(state, NewOfferSchema(user), DefaultEMDPercent)
}

func TestOfferFormController_NextBlocksOnInvalidStep(t *testing.T) {
	c := newController(t, ModeCreate, OfferForm{}, staffUser)

	advanced, errs := c.Next()

	assert.False(t, advanced)
	assert.Equal(t, 0, c.State().Step)
	assert.ElementsMatch(t, []string{"CustomerID", "OfferDate", "TenderID", "Title"}, errs.Fields())
	assert.Equal(t, "Offer title is required", errs["Title"])
}

func TestOfferFormController_NextValidatesOnlyActiveStep(t *testing.T) {
	form := completeOffer()
	form.WorkItems = nil
	form.EMD = EMDDetails{}
	c := newController(t, ModeCreate, form, staffUser)

	advanced, errs := c.Next()

	require.True(t, advanced, "errors: %v", errs)
	assert.Equal(t, 1, c.State().Step)

	// Step 1 now fails on the empty list only.
	advanced, errs = c.Next()
	assert.False(t, advanced)
	assert.Equal(t, map[string]string{"WorkItems": "Please add at least one work item"}, map[string]string(errs))
}

func TestOfferFormController_WorkItemRowErrors(t *testing.T) {
	form := completeOffer()
	form.WorkItems[1].TaxRate = 150
	form.WorkItems[1].Description = ""
	c := newController(t, ModeCreate, form, staffUser)
	c.State().Step = 1

	advanced, errs := c.Next()

	assert.False(t, advanced)
	assert.True(t, errs.Has("WorkItems[1].TaxRate"))
	assert.True(t, errs.Has("WorkItems[1].Description"))
	assert.False(t, errs.Has("WorkItems[0].Description"))
	assert.Equal(t, []string{"Description", "Tax rate"}, errs.Labels())
}

func TestOfferFormController_NextOnLastStepIsNoop(t *testing.T) {
	c := newController(t, ModeCreate, OfferForm{}, staffUser)
	c.State().Step = len(OfferSteps) - 1

	advanced, errs := c.Next()

	assert.False(t, advanced)
	assert.Nil(t, errs)
	assert.Equal(t, len(OfferSteps)-1, c.State().Step)
}

func TestOfferFormController_PreviousNeverValidates(t *testing.T) {
	c := newController(t, ModeCreate, OfferForm{}, staffUser)

	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.State().Step)

	c.State().Step = 2
	assert.True(t, c.Previous())
	assert.Equal(t, 1, c.State().Step)
}

func TestOfferFormController_Reset(t *testing.T) {
	c := newController(t, ModeEdit, completeOffer(), staffUser)

	require.ErrorIs(t, c.Reset(), ErrResetUnavailable)

	c.State().Step = 2
	c.Edit(func(v *OfferForm) { v.Title = "Changed" })
	assert.True(t, c.CanReset())

	require.NoError(t, c.Reset())
	assert.Equal(t, "Supply of transformers", c.State().Values.Title)
	assert.False(t, c.State().Touched)
	assert.Equal(t, 2, c.State().Step, "reset keeps the current step")
}

func TestOfferFormController_EditBackToInitialIsUntouched(t *testing.T) {
	c := newController(t, ModeEdit, completeOffer(), staffUser)

	c.Edit(func(v *OfferForm) { v.Title = "Other" })
	c.Edit(func(v *OfferForm) { v.Title = "Supply of transformers" })

	assert.False(t, c.State().Touched)
}

func TestOfferFormController_EMDFollowsTotalUntilOverridden(t *testing.T) {
	c := newController(t, ModeCreate, OfferForm{}, staffUser)

	list := c.WorkItems()
	row := list.Add()
	require.NoError(t, list.Update(row.Key, FieldBasicRate, "100000"))
	require.NoError(t, list.Update(row.Key, FieldTaxRate, "18"))
	assert.Equal(t, 2360.0, c.State().Values.EMD.Amount)

	c.SetEMDAmount(5000)
	assert.True(t, c.State().EMDOverridden)

	list = c.WorkItems()
	second := list.Add()
	require.NoError(t, list.Update(second.Key, FieldBasicRate, "50000"))
	assert.Equal(t, 5000.0, c.State().Values.EMD.Amount, "override survives total changes")

	c.UseSuggestedEMD()
	assert.False(t, c.State().EMDOverridden)
	assert.Equal(t, 3360.0, c.State().Values.EMD.Amount)
}

func TestOfferFormController_SetSameEMDAmountIsNotOverride(t *testing.T) {
	c := newController(t, ModeCreate, OfferForm{}, staffUser)

	c.SetEMDAmount(0)

	assert.False(t, c.State().EMDOverridden)
}

func TestOfferFormController_EditModeKeepsStoredEMD(t *testing.T) {
	form := completeOffer()
	form.EMD.Amount = 7000
	c := newController(t, ModeEdit, form, staffUser)

	assert.True(t, c.State().EMDOverridden)
	list := c.WorkItems()
	list.Remove("b")
	assert.Equal(t, 7000.0, c.State().Values.EMD.Amount)
}

func TestOfferFormController_EditModeRoundedSuggestionIsNotOverride(t *testing.T) {
	created := newController(t, ModeCreate, OfferForm{}, staffUser)
	list := created.WorkItems()
	row := list.Add()
	require.NoError(t, list.Update(row.Key, FieldBasicRate, "123.45"))
	// 123.45 x 2% = 2.469
	require.Equal(t, 2.47, created.State().Values.EMD.Amount)
	require.False(t, created.State().EMDOverridden)

	c := newController(t, ModeEdit, created.State().Values, staffUser)
	assert.False(t, c.State().EMDOverridden)
	assert.False(t, c.State().InitialEMDOverridden)

	list = c.WorkItems()
	require.NoError(t, list.Update(row.Key, FieldBasicRate, "1000"))
	assert.Equal(t, 20.0, c.State().Values.EMD.Amount)
}

func TestOfferFormController_ApplyExtractedOverridesEMD(t *testing.T) {
	c := newController(t, ModeCreate, OfferForm{}, staffUser)

	c.ApplyExtracted(ExtractedFields{Amount: qty(12000), BankName: strPtr("Canara Bank")})

	assert.True(t, c.State().EMDOverridden)
	assert.Equal(t, 12000.0, c.State().Values.EMD.Amount)
	assert.Equal(t, "Canara Bank", c.State().Values.EMD.BankName)
}

func TestOfferFormController_SubmitOnlyFromLastStep(t *testing.T) {
	c := newController(t, ModeCreate, completeOffer(), staffUser)

	_, _, err := c.PrepareSubmit()
	require.ErrorIs(t, err, ErrNotOnLastStep)

	c.State().Step = len(OfferSteps) - 1
	values, errs, err := c.PrepareSubmit()
	require.NoError(t, err, "errors: %v", errs)
	assert.Equal(t, "Supply of transformers", values.Title)
}

func TestOfferFormController_SubmitRejectsEmptyItems(t *testing.T) {
	form := completeOffer()
	form.WorkItems = []WorkItem{}
	c := newController(t, ModeCreate, form, staffUser)
	c.State().Step = len(OfferSteps) - 1

	_, errs, err := c.PrepareSubmit()

	require.ErrorIs(t, err, ErrFormInvalid)
	assert.Equal(t, "Please add at least one work item", errs["WorkItems"])
}

func TestOfferFormController_DraftFromAnyStepStillNeedsItems(t *testing.T) {
	form := completeOffer()
	c := newController(t, ModeCreate, form, staffUser)

	_, errs, err := c.PrepareDraft()
	require.NoError(t, err, "errors: %v", errs)

	c.WorkItems().Remove("a")
	list := c.WorkItems()
	list.Remove("b")

	_, errs, err = c.PrepareDraft()
	require.ErrorIs(t, err, ErrFormInvalid)
	assert.True(t, errs.Has("WorkItems"))
}

func TestOfferSchema_ApproverDependsOnUser(t *testing.T) {
	form := completeOffer()
	form.Approver = ""

	staffErrs := NewOfferSchema(staffUser).ValidateAll(form)
	assert.Equal(t, "Approver is required", staffErrs["Approver"])

	adminErrs := NewOfferSchema(adminUser).ValidateAll(form)
	assert.Empty(t, adminErrs)

	stepErrs := NewOfferSchema(staffUser).ValidateFields(form, OfferSteps[3].Fields)
	assert.True(t, stepErrs.Has("Approver"))
}

func TestOfferSchema_EMDStep(t *testing.T) {
	form := completeOffer()
	form.EMD = EMDDetails{Amount: -1, PaymentMode: "CHEQUE", ValidityDays: 0, ExpiryDate: "31-03-2027"}

	errs := NewOfferSchema(staffUser).ValidateFields(form, OfferSteps[2].Fields)

	assert.Equal(t, "EMD amount must be at least 0", errs["EMD.Amount"])
	assert.Equal(t, "Payment mode must be one of: DD, BG, FDR, ONLINE, EXEMPT", errs["EMD.PaymentMode"])
	assert.True(t, errs.Has("EMD.ValidityDays"))
	assert.Equal(t, "Expiry date must be a date (YYYY-MM-DD)", errs["EMD.ExpiryDate"])
	assert.False(t, errs.Has("Title"))
}

func TestOfferFormState_EncodeDecode(t *testing.T) {
	state := NewOfferFormState(ModeEdit, "rec1", completeOffer(), DefaultEMDPercent)
	state.Step = 2

	encoded, err := state.Encode()
	require.NoError(t, err)

	decoded, err := DecodeOfferFormState(encoded)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

func TestDecodeOfferFormState_Rejects(t *testing.T) {
	_, err := DecodeOfferFormState("not base64!")
	assert.Error(t, err)

	bad := &OfferFormState{Token: "t", Mode: "delete"}
	encoded, err := bad.Encode()
	require.NoError(t, err)
	_, err = DecodeOfferFormState(encoded)
	assert.Error(t, err)

	clamped := &OfferFormState{Token: "t", Mode: ModeCreate, Step: 99}
	encoded, err = clamped.Encode()
	require.NoError(t, err)
	decoded, err := DecodeOfferFormState(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(OfferSteps)-1, decoded.Step)
}
