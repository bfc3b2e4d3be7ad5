package parse

// ID card templates print each label on its own line with the value on the
// next one; every field is a LabelThenNextLine rule or a chain of them.
var (
	idNameRule = FirstOf(
		NewLabelThenNextLine(`Employee\s*Name`),
		NewLabelThenNextLine(`Name`),
	)
	idNumberRule = FirstOf(
		NewLabelThenNextLine(`Employee\s*ID`),
		NewLabelThenNextLine(`ID\s*Number`),
		NewLabelThenNextLine(`Roll\s*No`),
	)
	designationRule   = NewLabelThenNextLine(`Designation`)
	departmentRule    = NewLabelThenNextLine(`Department`)
	dateOfJoiningRule = NewLabelThenNextLine(`Date\s*of\s*Joining`)
	validUntilRule    = FirstOf(
		NewLabelThenNextLine(`Valid\s*(?:Until|Upto|Till)`),
		NewLabelThenNextLine(`Validity`),
		// student cards often print only the academic span, e.g. 2023 - 2027
		RuleFunc(func(t string) *string { return firstMatch(reYearRange, t) }),
	)
	bloodGroupRule = NewLabelThenNextLine(`Blood\s*Group`)
)

// ExtractIDCard reads the label/value pairs of an identity card.
func ExtractIDCard(text string) IDCardFields {
	return IDCardFields{
		Name:          idNameRule.Find(text),
		EmployeeID:    idNumberRule.Find(text),
		Designation:   designationRule.Find(text),
		Department:    departmentRule.Find(text),
		DateOfJoining: dateOfJoiningRule.Find(text),
		ValidUntil:    validUntilRule.Find(text),
		BloodGroup:    bloodGroupRule.Find(text),
	}
}
