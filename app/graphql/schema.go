// Package graphql exposes a read-only query surface over the catalog:
// products, single product, and seller profiles with their reviews.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/campusmart/app/services"
	pkggraphql "github.com/shashiranjanraj/campusmart/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok {
					return view.ID.Hex(), nil
				}
				return nil, nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"imageUrl":    &graphql.Field{Type: graphql.String},
	},
})

var listedProductType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ListedProduct",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok {
					return view.ID.Hex(), nil
				}
				return nil, nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"imageUrl":    &graphql.Field{Type: graphql.String},
		"sellerId": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok {
					return view.SellerID.Hex(), nil
				}
				return nil, nil
			},
		},
		"seller": &graphql.Field{
			Type: sellerType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source, nil
			},
		},
	},
})

var sellerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Seller",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok && view.Seller != nil {
					return view.Seller.ID.Hex(), nil
				}
				return nil, nil
			},
		},
		"firstName": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok && view.Seller != nil {
					return view.Seller.FirstName, nil
				}
				return nil, nil
			},
		},
		"lastName": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok && view.Seller != nil {
					return view.Seller.LastName, nil
				}
				return nil, nil
			},
		},
		"averageRating": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok {
					return view.SellerRating, nil
				}
				return nil, nil
			},
		},
		"totalReviews": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if view, ok := p.Source.(services.ProductView); ok {
					return view.SellerReviews, nil
				}
				return nil, nil
			},
		},
	},
})

// NewSchema builds the catalog query schema over the catalog service.
func NewSchema(catalog *services.CatalogService) (graphql.Schema, error) {
	root := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type:        graphql.NewList(listedProductType),
				Description: "Catalog listing, optionally filtered by category.",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, _ := p.Args["category"].(string)
					return catalog.List(p.Context, category)
				},
			},
			"product": &graphql.Field{
				Type:        productType,
				Description: "One product by id.",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					view, err := catalog.Get(p.Context, id)
					if err != nil {
						return nil, fmt.Errorf("product %s: %w", id, err)
					}
					return *view, nil
				},
			},
			"seller": &graphql.Field{
				Type:        sellerType,
				Description: "The seller of a product, with the review aggregate.",
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["productId"].(string)
					view, err := catalog.Get(p.Context, id)
					if err != nil {
						return nil, fmt.Errorf("product %s: %w", id, err)
					}
					return *view, nil
				},
			},
		},
	})

	return pkggraphql.NewSchema(root)
}
