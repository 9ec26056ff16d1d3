package main

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tarificateur/go_backend/internal/client"
	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
)

var listFlags struct {
	guarantee string
	vip       string
	from      string
	to        string
	premMin   string
	premMax   string
	search    string
	sort      string
	desc      bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the quote list through the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := url.Values{}
		set := func(k, val string) {
			if val != "" {
				v.Set(k, val)
			}
		}
		set("garantie", listFlags.guarantee)
		set("client_vip", listFlags.vip)
		set("date_creation_min", listFlags.from)
		set("date_creation_max", listFlags.to)
		set("prime_min", listFlags.premMin)
		set("prime_max", listFlags.premMax)
		set("q", listFlags.search)
		if listFlags.sort != "" {
			if !quote.Sortable(listFlags.sort) {
				return fmt.Errorf("cannot sort on %q", listFlags.sort)
			}
			v.Set("sort", listFlags.sort)
			if listFlags.desc {
				v.Set("dir", "desc")
			}
		}

		api := client.New(cfg.APIBaseURL, cfg.APIToken)
		all, err := api.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("load quotes: %w", err)
		}
		loc := document.Location()
		filter := quote.FilterFromValues(v, loc)
		shown := quote.SortFromValues(v).Apply(filter.Apply(all))

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tOPPORTUNITÉ\tCLIENT\tGARANTIE\tSTATUT\tPRIME TOTALE\tDATE")
		for _, q := range shown {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				q.ID, q.OpportunityNumber, q.ClientName, q.Guarantee,
				quote.StatusLabel(q.VIP), quote.FormatOptionalAmount(q.PremiumTotal),
				quote.FormatDate(q.CreatedAt, loc))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		switch {
		case len(shown) == 0:
			fmt.Println("Aucun devis trouvé")
		case filter.Active():
			fmt.Printf("%d résultat(s) sur %d devis\n", len(shown), len(all))
		}
		return nil
	},
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listFlags.guarantee, "garantie", "", "DO, TRC or DO+TRC")
	f.StringVar(&listFlags.vip, "vip", "", "true or false")
	f.StringVar(&listFlags.from, "from", "", "earliest creation date (YYYY-MM-DD)")
	f.StringVar(&listFlags.to, "to", "", "latest creation date (YYYY-MM-DD)")
	f.StringVar(&listFlags.premMin, "prime-min", "", "minimum total premium")
	f.StringVar(&listFlags.premMax, "prime-max", "", "maximum total premium")
	f.StringVarP(&listFlags.search, "search", "q", "", "free-text search")
	f.StringVar(&listFlags.sort, "sort", "", "sort column")
	f.BoolVar(&listFlags.desc, "desc", false, "sort descending")
}
