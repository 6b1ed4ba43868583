package content

import (
	"fmt"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/util"
	"strconv"
	"strings"
)

// Placeholders: {keyword} {location} {city} {province} {services} {salons}.
// {price:...} blocks are kept only when an average price is known, with
// {amount} replaced by the rounded price; {noprice:...} blocks only when it
// is not.
var introTemplates = []string{
	`Looking for the best {keyword} in {location}? Stylr SA connects you with {services} verified services from {salons} top-rated salons and beauty professionals. Compare prices, read authentic reviews, and book appointments online instantly—all in one place.

Whether you're searching for {keyword} for a special occasion or regular maintenance, {city} offers a diverse range of options to suit every style and budget. Our platform makes it easy to discover highly-rated professionals near you, view their portfolios, check real-time availability, and secure your booking in just a few clicks.

{price:Average prices for {keyword} in {city} start from R{amount}. }Browse verified reviews from real customers, compare service offerings, and find the perfect match for your beauty needs. Book with confidence knowing that all our listed professionals are vetted and highly recommended by the {city} community.`,

	`Discover {services} exceptional {keyword} options in {location}. Stylr SA is your trusted platform for finding and booking beauty services with {salons} verified salons and independent professionals ready to serve you.

Skip the hassle of endless searching and phone calls. Our platform lets you browse portfolios, read verified reviews, check real-time availability, and book appointments 24/7. Whether you need same-day service or want to plan ahead, finding the right professional in {city} has never been easier.

{price:With competitive pricing starting from R{amount}, }you'll find options for every budget without compromising on quality. All professionals on our platform are verified, insured, and committed to delivering exceptional service. Join thousands of satisfied customers who trust Stylr SA for their beauty needs in {city}.`,

	`{city} is home to some of {province}'s finest beauty professionals, and Stylr SA brings them all together in one convenient platform. With {services} services available from {salons} top-rated providers, finding your perfect {keyword} match has never been simpler.

Our platform is designed specifically for the {city} community, featuring local professionals who understand the unique style preferences and beauty trends of {province}. Browse detailed profiles, view before-and-after photos, read authentic customer reviews, and book appointments that fit your schedule—all from your phone or computer.

{price:Transparent pricing starting from R{amount} means no surprises. }Whether you're a {city} local or just visiting, Stylr SA makes it easy to look and feel your best. Book online now and experience the convenience of modern beauty service booking.`,

	`Finding quality {keyword} in {location} just got easier. Stylr SA features {services} carefully curated services from {salons} verified beauty professionals who meet our strict quality standards. Every provider on our platform is vetted for professionalism, hygiene standards, and customer satisfaction.

What sets us apart is our commitment to transparency and quality. Read detailed reviews from real customers, view comprehensive portfolios showcasing actual work, and compare services side-by-side. Our booking system shows real-time availability, making it simple to find appointments that work with your schedule.

{price:With services starting from R{amount}, }{city} offers excellent value for professional beauty services. Whether you're looking for a trusted regular provider or trying something new, our platform helps you make informed decisions. Book your {keyword} appointment today and discover why thousands of {province} residents trust Stylr SA.`,

	`Book {keyword} in {location} with just a few taps. Stylr SA streamlines your beauty booking experience with {services} services from {salons} professional providers, all available for instant online booking. No more phone tag or waiting for callbacks—see availability and book immediately.

Our platform is built for modern life. Browse services during your commute, book appointments during your lunch break, and manage everything from your phone. Get instant booking confirmations, receive appointment reminders, and even reschedule if plans change. It's beauty booking designed for your busy lifestyle.

{price:Competitive pricing from R{amount} }{noprice:Transparent pricing }ensures you know exactly what to expect. Compare options, read reviews, and choose the perfect provider for your needs—all in {city}. Join the growing community of {province} residents who've simplified their beauty routine with Stylr SA.`,
}

func introText(f internal.PageFacts) string {
	template := introTemplates[templateIndex(f.Location.Id, len(introTemplates))]
	template = resolveBlocks(template, "price", f.AvgPrice != nil)
	template = resolveBlocks(template, "noprice", f.AvgPrice == nil)

	amount := ""
	if f.AvgPrice != nil {
		amount = fmt.Sprintf("%.0f", *f.AvgPrice)
	}

	replacer := strings.NewReplacer(
		"{keyword}", f.Keyword.Text,
		"{location}", f.Location.DisplayName(),
		"{city}", f.Location.Name,
		"{province}", f.Location.Province,
		"{services}", strconv.Itoa(f.ServiceCount),
		"{salons}", strconv.Itoa(f.SalonCount),
		"{amount}", amount,
	)

	paragraphs := strings.Split(replacer.Replace(template), "\n\n")
	for i, p := range paragraphs {
		paragraphs[i] = util.NormalizeSpaces(p)
	}

	return strings.Join(paragraphs, "\n\n")
}

// resolveBlocks unwraps every {name:...} block when keep is set and drops it
// otherwise. Blocks may contain placeholders but not other blocks.
func resolveBlocks(template, name string, keep bool) string {
	open := "{" + name + ":"

	var b strings.Builder
	for {
		start := strings.Index(template, open)
		if start < 0 {
			b.WriteString(template)
			return b.String()
		}

		b.WriteString(template[:start])
		rest := template[start+len(open):]

		end := closingBrace(rest)
		if end < 0 {
			b.WriteString(template[start:])
			return b.String()
		}

		if keep {
			b.WriteString(rest[:end])
		}
		template = rest[end+1:]
	}
}

// closingBrace finds the brace closing a block, skipping nested placeholders.
func closingBrace(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}
