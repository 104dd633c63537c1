package types

import "testing"

func TestShippingFeeHonorsFreeShipping(t *testing.T) {
	t.Parallel()

	var nilQuote *DeliveryQuote
	if fee := nilQuote.ShippingFee(); fee != 0 {
		t.Fatalf("nil quote fee = %d, want 0", fee)
	}

	paid := &DeliveryQuote{StandardFee: 20000, RushFee: 50000}
	if fee := paid.ShippingFee(); fee != 20000 {
		t.Fatalf("fee = %d, want 20000", fee)
	}

	free := &DeliveryQuote{StandardFee: 20000, FreeShippingApplied: true}
	if fee := free.ShippingFee(); fee != 0 {
		t.Fatalf("free-shipping fee = %d, want 0", fee)
	}
}

func TestDestinationEqual(t *testing.T) {
	t.Parallel()

	base := Destination{Province: "Hanoi", Address: "1 Main St"}

	if !base.Equal(Destination{Province: " hanoi ", Address: "1 Main St "}) {
		t.Fatal("expected case and whitespace insensitive province match")
	}
	if base.Equal(Destination{Province: "Hanoi", Address: "2 Main St"}) {
		t.Fatal("address change must break equality")
	}
	if base.Equal(Destination{Province: "Hanoi", Address: "1 Main St", RushDelivery: true}) {
		t.Fatal("delivery mode change must break equality")
	}
}
