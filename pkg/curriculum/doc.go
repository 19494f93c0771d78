// Package curriculum implements the planning rules of the grade builder on
// top of the layout graph.
//
// A plan places courses into numbered periods. [Loads] sums credits per
// period and flags periods above the credit limit, [ValidateMove] checks a
// single drag-and-drop move against prerequisites, dependents and the limit,
// and [Analyze] bundles loads, redundant prerequisites and crossing counts
// into one [Report].
//
// Credits are read from the "credits" attribute, or "creditos" in plans
// saved by older editors.
package curriculum
