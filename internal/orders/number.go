package orders

import (
	"fmt"
	"math/rand"
)

// randomNumber draws the 4 digits of an order number, 1000..9999.
func randomNumber() int { return 1000 + rand.Intn(9000) }

func FormatNumber(n int) string { return fmt.Sprintf("#%d", n) }

// MaskCardNumber keeps only the last four characters of the card number.
func MaskCardNumber(card string) string {
	last := card
	if len(card) > 4 {
		last = card[len(card)-4:]
	}
	return "****-****-****-" + last
}
