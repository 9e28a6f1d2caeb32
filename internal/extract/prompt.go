package extract

// extractionPrompt is the fixed field extraction instruction sent with every
// document. The field names must match the Record JSON tags exactly.
const extractionPrompt = `Examine this invoice document and extract the data as clean JSON.

Fields:
1. VendorName: The issuing company name, exactly as printed.
2. InvoiceNumber: The invoice number.
3. Currency: The currency code (BGN, EUR, USD).
4. TotalAmount: The total amount payable including VAT, as a number.
5. InvoiceDate: The issue date (DD.MM.YYYY).
6. PONumber: The purchase order number (PO / CP number), if present.
7. full_text: The entire raw text of the invoice.

Return ONLY the JSON object.`
