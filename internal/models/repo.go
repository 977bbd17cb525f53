package models

import (
	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/supabase-go"
)

var Validate = validator.New()

const (
	ProfilesTable    = "profiles"
	ErrandsTable     = "errands"
	PrintOrdersTable = "print_orders"
	PrintConfigTable = "print_config"
	BountiesTable    = "tutor_requests"
	PromotionsTable  = "promotions"
	ShopsTable       = "shops"
	MenuItemsTable   = "menu_items"
	WithdrawalsTable = "mana_withdrawals"

	DocumentsBucket = "documents"
	IDCardsBucket   = "id_cards"
)

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
	}
}

// GetAuthenticatedClient returns a Supabase client that carries the given
// access token, so row-level security applies to the caller's session.
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if su.url == "" || su.key == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

func (su *SupabaseRepo) clientFor(accessToken string) *supabase.Client {
	if accessToken == "" {
		return su.supabaseClient
	}
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return su.supabaseClient
	}
	return client
}
