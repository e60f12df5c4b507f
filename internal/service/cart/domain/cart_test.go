// internal/service/cart/domain/cart_test.go
package domain

import "testing"

func TestAddItemsMergesSameSKUAndPrice(t *testing.T) {
	cart := &Cart{}
	cart.AddItems([]CartItem{
		{SKU: "sku-b", Quantity: 1, UnitPrice: 50},
		{SKU: "sku-a", Quantity: 2, UnitPrice: 100},
	})
	cart.AddItems([]CartItem{
		{SKU: "sku-a", Quantity: 3, UnitPrice: 100},
	})

	if len(cart.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(cart.Items))
	}
	// 条目按 SKU 排序
	if cart.Items[0].SKU != "sku-a" || cart.Items[0].Quantity != 5 {
		t.Errorf("items[0] = %+v, want sku-a x5", cart.Items[0])
	}
	if cart.Items[1].SKU != "sku-b" || cart.Items[1].Quantity != 1 {
		t.Errorf("items[1] = %+v, want sku-b x1", cart.Items[1])
	}
}

func TestAddItemsKeepsDistinctPrices(t *testing.T) {
	cart := &Cart{}
	// 同 SKU 不同单价不合并
	cart.AddItems([]CartItem{
		{SKU: "sku-a", Quantity: 1, UnitPrice: 100},
		{SKU: "sku-a", Quantity: 1, UnitPrice: 90},
	})

	if len(cart.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(cart.Items))
	}
	total := cart.Items[0].Quantity + cart.Items[1].Quantity
	if total != 2 {
		t.Errorf("total quantity = %d, want 2", total)
	}
}

func TestCartItemValidate(t *testing.T) {
	cases := []struct {
		name    string
		item    CartItem
		wantErr bool
	}{
		{"valid", CartItem{SKU: "sku-a", Quantity: 1, UnitPrice: 10}, false},
		{"free item", CartItem{SKU: "sku-a", Quantity: 1, UnitPrice: 0}, false},
		{"missing sku", CartItem{Quantity: 1, UnitPrice: 10}, true},
		{"zero quantity", CartItem{SKU: "sku-a", Quantity: 0, UnitPrice: 10}, true},
		{"negative price", CartItem{SKU: "sku-a", Quantity: 1, UnitPrice: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMarkCheckedOut(t *testing.T) {
	cart := &Cart{State: StateCreated}
	if err := cart.MarkCheckedOut(); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	if cart.State != StateCheckedOut {
		t.Errorf("state = %d, want %d", cart.State, StateCheckedOut)
	}
	if err := cart.MarkCheckedOut(); err != ErrAlreadyCheckedOut {
		t.Errorf("second checkout err = %v, want ErrAlreadyCheckedOut", err)
	}
}
