package oracle

import "fmt"

// DocumentScoreScale is the point scale the document-typing prompt
// instructs the model to score against. Parsers normalize confidence
// percentages relative to it.
const DocumentScoreScale = 200

// subscriptionPrompt embeds the fixed preamble, the few-shot positive
// and negative exemplars, and the truncated body excerpt. The response
// schema is part of the prompt so every backend returns the same shape.
const subscriptionPrompt = `Analyze this email and decide whether it carries subscription/recurring-payment information.

EXAMPLES OF SUBSCRIPTION EMAIL:
- Monthly invoice for a service (e.g. "Microsoft 365 Invoice")
- Subscription renewal confirmation
- Subscription price change
- Subscription cancellation
- "Your subscription will renew"
- "Payment failed for subscription"

NOT A SUBSCRIPTION:
- One-off product purchase
- Password reset or security alert
- Newsletter/marketing email without a payment
- Sale or discount announcement (unless about a subscription)
- New feature announcement
- Invitation or social notification

EMAIL:
From: %s
Subject: %s
Body (truncated):
%s

Return ONLY valid JSON (no markdown blocks) with:
{
    "is_subscription": true or false,
    "confidence": <0-100>,
    "service_name": "<service name>" or null,
    "amount": <number> or null,
    "currency": "CZK"/"USD"/"EUR" or null,
    "subscription_type": "monthly"/"yearly"/"quarterly" or null,
    "reasoning": "<short justification, max 200 chars>"
}`

// documentPrompt asks for document typing on the 0-200 point scale the
// deterministic document table uses, so both paths stay comparable.
const documentPrompt = `Analyze this document and determine its type using a probabilistic scoring system (0-200 points).

SCORING SYSTEM (200 points total):

1. DOCUMENT TYPE INDICATORS (0-60 points):
   - Invoice: 60, bank statement: 55, court document: 55, police report: 55, receipt: 50
   - Marketing email: -30 (penalty)

2. CONTENT STRUCTURE (0-50 points):
   - Document/registration number: +15, issue date: +10, amount with currency: +15, signature/stamp: +10

3. LANGUAGE & FORMALITY (0-40 points):
   - Formal language: +20, legal terms (statutes, section marks): +20, informal/marketing tone: -20

4. OCR QUALITY (0-30 points):
   - High legibility (>90%%): +30, medium (60-90%%): +15, low (<60%%): +5

5. METADATA (0-20 points):
   - Known institution: +10, date stamp: +5, reference number: +5

DOCUMENT TO ANALYZE:
Filename: %s
Content (truncated):
%s

Return ONLY valid JSON (no markdown blocks):
{
    "document_type": "<invoice/receipt/court_document/bank_statement/other>",
    "score": <0-200>,
    "confidence_percent": <0-100>,
    "reasoning": "<1-2 sentences explaining the score>",
    "tags": ["tag1", "tag2"],
    "correspondent": "<company/institution name or null>",
    "detected_amount": <amount or null>,
    "detected_currency": "<CZK/EUR/USD or null>"
}`

// BuildSubscriptionPrompt renders the subscription-detection prompt.
// body must already be truncated to the configured excerpt budget.
func BuildSubscriptionPrompt(sender, subject, body string) string {
	return fmt.Sprintf(subscriptionPrompt, sender, subject, body)
}

// BuildDocumentPrompt renders the document-typing prompt.
func BuildDocumentPrompt(filename, text string) string {
	return fmt.Sprintf(documentPrompt, filename, text)
}
