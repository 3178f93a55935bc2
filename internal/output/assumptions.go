package output

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Every intermediate amount is rounded to the nearest dollar",
	"Only the basic personal amount is claimed as a non-refundable credit",
	"Provinces without rules in the rule set pay no provincial tax or pension plan contribution",
	"RRSP deductions are capped at the contribution room earned on employment and freelance income",
	"Rental losses are reported but do not reduce gross or taxable income",
}
