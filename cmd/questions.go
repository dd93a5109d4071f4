package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/quantiz/internal/catalog"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List catalog questions matching a filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.catalog.RefreshCatalog(cmd.Context()); err != nil {
			return err
		}

		f := cmd.Flags()
		var c catalog.Criteria
		c.Difficulty, _ = f.GetString("difficulty")
		c.Company, _ = f.GetString("company")
		c.Topics, _ = f.GetStringSlice("topic")
		c.Tags, _ = f.GetStringSlice("tag")
		c.Search, _ = f.GetString("search")
		c.OnlyUnsolved, _ = f.GetBool("unsolved")

		qs := d.catalog.Filtered(c)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOLVED\tDIFFICULTY\tTOPIC\tTITLE\tCOMPANIES")
		for _, q := range qs {
			solved := ""
			if q.IsSolved {
				solved = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				q.ID, solved, q.Difficulty, q.Topic, q.Title, strings.Join(q.Companies, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d questions\n", len(qs), len(d.catalog.Questions()))
		return nil
	},
}

func init() {
	f := questionsCmd.Flags()
	f.String("difficulty", "", "Only questions of this difficulty")
	f.String("company", "", "Only questions asked by this company")
	f.StringSlice("topic", nil, "Only questions in any of these topics (repeatable)")
	f.StringSlice("tag", nil, "Only questions carrying all of these tags (repeatable)")
	f.String("search", "", "Case-insensitive substring of title or task text")
	f.Bool("unsolved", false, "Only unsolved questions")
}
