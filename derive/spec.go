package derive

import (
	"fmt"

	"github.com/extrahand/taskpages/fields"
)

// DefaultLocation is the market name used when a page carries no explicit
// location.
const DefaultLocation = "India"

// DefaultSynonyms returns the ordered substitution table for the seeded
// accounting templates. Phrases come before their component words; the
// order is load-bearing for substitution correctness.
func DefaultSynonyms() []Synonym {
	return []Synonym{
		{Pattern: "bookkeeper or accountant", Phrase: true},
		{Pattern: "accounting"},
		{Pattern: "bookkeeping"},
		{Pattern: "bookkeeper"},
		{Pattern: "accountant"},
	}
}

// DefaultSpec returns the seeded template set for task category pages. The
// template order matches the public page's section order.
func DefaultSpec() *Spec {
	spec, err := NewSpec(defaultTemplates())
	if err != nil {
		panic(fmt.Sprintf("derive: default spec invalid: %v", err))
	}
	return spec
}

func defaultTemplates() []FieldTemplate {
	text := func(format string, args ...func(TemplateContext) string) TemplateFn {
		return func(ctx TemplateContext) any {
			if ctx.Base() == "" {
				return nil
			}
			values := make([]any, len(args))
			for i, arg := range args {
				values[i] = arg(ctx)
			}
			return fmt.Sprintf(format, values...)
		}
	}
	base := func(ctx TemplateContext) string { return ctx.Base() }
	place := func(ctx TemplateContext) string { return ctx.Place() }
	static := func(value any) TemplateFn {
		return func(TemplateContext) any { return value }
	}

	return []FieldTemplate{
		{Path: "heroTitle", Fn: text("%s tasks near you", base)},
		{Path: "heroDescription", Fn: text("Post your task for free and get offers from trusted %s taskers in %s.", base, place)},
		{Path: "disclaimer", Fn: text("Rates shown are indicative. Actual earnings for %s tasks depend on scope and location.", base)},
		{Path: "whyJoinTitle", Fn: text("Why join Extrahand as a %s tasker?", base)},
		{Path: "whyJoinFeatures", Fn: func(ctx TemplateContext) any {
			if ctx.Base() == "" {
				return nil
			}
			return []fields.Feature{
				{Title: "Flexible hours", Description: fmt.Sprintf("Pick up %s tasks that fit around your schedule.", ctx.Base())},
				{Title: "Fair pay", Description: "You quote the price, the client accepts it upfront."},
				{Title: "Grow your reputation", Description: fmt.Sprintf("Reviews from completed %s tasks bring you more work.", ctx.Base())},
			}
		}},
		{Path: "whyJoinButtonText", Fn: static("Join Extrahand")},
		{Path: "staticTasksSectionTitle", Fn: text("%s tasks in %s", base, place)},
		{Path: "staticTasksSectionDescription", Fn: static("Check out what tasks people want done near you right now...")},
		{Path: "browseAllTasksButtonText", Fn: static("Browse all tasks")},
		{Path: "earningPotentialTitle", Fn: text("Discover your earning potential in %s", place)},
		{Path: "earningPotentialDescription", Fn: static("Earn money with every task")},
		{Path: "earningPotentialData", Fn: static(fields.EarningsMatrix{
			Weekly:  map[string]string{"1-2": "₹1,039", "3-5": "₹2,598", "5+": "₹3,637"},
			Monthly: map[string]string{"1-2": "₹4,156", "3-5": "₹10,392", "5+": "₹14,548"},
			Yearly:  map[string]string{"1-2": "₹49,872", "3-5": "₹124,704", "5+": "₹174,576"},
		})},
		{Path: "earningPotentialDisclaimer", Fn: text("Earnings are estimates based on completed %s tasks and are not guaranteed.", base)},
		{Path: "earningPotentialButtonText", Fn: static("Join Extrahand")},
		{Path: "incomeOpportunitiesTitle", Fn: text("Unlock new income opportunities in %s", place)},
		{Path: "incomeOpportunitiesDescription", Fn: text("Explore %s related tasks and discover your financial opportunities", base)},
		{Path: "incomeOpportunitiesRows", Fn: func(ctx TemplateContext) any {
			if ctx.Base() == "" {
				return nil
			}
			return []fields.EarningsRow{
				{JobType: fmt.Sprintf("%s data entry", ctx.Base()), Band1To2: "₹800", Band3To5: "₹2,100", Band5Plus: "₹3,200"},
				{JobType: fmt.Sprintf("%s consulting", ctx.Base()), Band1To2: "₹1,500", Band3To5: "₹3,900", Band5Plus: "₹5,600"},
				{JobType: fmt.Sprintf("Part-time %s support", ctx.Base()), Band1To2: "₹1,100", Band3To5: "₹2,800", Band5Plus: "₹4,300"},
			}
		}},
		{Path: "incomeOpportunitiesDisclaimer", Fn: text("Figures reflect typical %s task budgets posted on Extrahand.", base)},
		{Path: "howToEarnTitle", Fn: static("How to earn money on Extrahand")},
		{Path: "howToEarnSteps", Fn: func(ctx TemplateContext) any {
			if ctx.Base() == "" {
				return nil
			}
			return []fields.Step{
				{Subtitle: "Create your profile", Description: fmt.Sprintf("Tell clients about your %s experience and the areas you serve.", ctx.Base())},
				{Subtitle: "Browse open tasks", Description: fmt.Sprintf("Find %s tasks near you and send your offer.", ctx.Base())},
				{Subtitle: "Get paid", Description: "Complete the task and receive payment through Extrahand."},
			}
		}},
		{Path: "getInspiredTitle", Fn: text("Get inspired by top %s taskers", base)},
		{Path: "insuranceCoverTitle", Fn: static("Insurance cover for your peace of mind")},
		{Path: "insuranceCoverDescription", Fn: text("Extrahand taskers are covered while completing %s tasks booked through the platform.", base)},
		{Path: "questionsTitle", Fn: text("Top %s related questions", base)},
		{Path: "questions", Fn: func(ctx TemplateContext) any {
			if ctx.Base() == "" {
				return nil
			}
			return []fields.QAItem{
				{Subtitle: fmt.Sprintf("How much do %s tasks pay?", ctx.Base()), Description: "Most clients accept the first reasonable offer, so quote what the work is worth to you."},
				{Subtitle: fmt.Sprintf("Do I need qualifications for %s tasks?", ctx.Base()), Description: "Clients see your profile, reviews and completed tasks before accepting an offer."},
				{Subtitle: "When do I get paid?", Description: "Payment is released as soon as the client marks the task complete."},
			}
		}},
	}
}
