// Separate package is workaround to import cycles.
package ui_config

type Config struct {
	// appended to every amount: "1,100" + "won"
	CurrencySuffix string `hcl:"currency_suffix"`
	// print transaction QR code after purchase
	ReceiptQR bool `hcl:"receipt_qr"`
	// admin panel log lines, 0 = all
	LogLines int `hcl:"log_lines"`
}
