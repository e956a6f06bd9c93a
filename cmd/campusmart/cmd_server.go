package main

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/campusmart/app/controllers"
	"github.com/shashiranjanraj/campusmart/app/routes"
	"github.com/shashiranjanraj/campusmart/internal/server"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/router"
)

// campusmart serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// campusmart route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Register against empty controllers; handlers are never invoked.
		r := router.New()
		routes.RegisterAPI(r, routes.Controllers{
			Auth:    &controllers.AuthController{},
			User:    &controllers.UserController{},
			Cart:    &controllers.CartController{},
			Order:   &controllers.OrderController{},
			Product: &controllers.ProductController{},
			Chat:    &controllers.ChatController{},
		}, auth.NewManager("", 0), func(http.ResponseWriter, *http.Request) {})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
