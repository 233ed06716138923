package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hatokurandom/hatokurandom/internal/cards"
	"github.com/hatokurandom/hatokurandom/internal/supply"
	"github.com/hatokurandom/hatokurandom/pkg/base64xml"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hatokurandom",
		Short:         "Supply randomizer for the card game",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newEncodeCmd(),
		newDecodeCmd(),
		newCardCmd(),
		newPermalinkCmd(),
	)
	return root
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, 0, len(args))
	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", a)
		}
		values = append(values, v)
	}
	return values, nil
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode VALUE...",
		Short: "Encode 6-bit values as base64xml text",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseInts(args)
			if err != nil {
				return err
			}
			text, err := base64xml.Encode(values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode TEXT",
		Short: "Decode base64xml text into 6-bit values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := base64xml.Decode(args[0])
			if err != nil {
				return err
			}
			for i, v := range values {
				if i > 0 {
					fmt.Fprint(cmd.OutOrStdout(), " ")
				}
				fmt.Fprint(cmd.OutOrStdout(), v)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card CID",
		Short: "Show a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := cards.ParseCID(args[0])
			if err != nil {
				return err
			}
			card, err := cards.CardFromCID(cid)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(card)
		},
	}
}

func newPermalinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permalink CID...",
		Short: "Print the permalink pid of a supply",
		RunE: func(cmd *cobra.Command, args []string) error {
			cids, err := parseInts(args)
			if err != nil {
				return err
			}
			code, err := supply.Permalink(cids)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "supply:"+code)
			return nil
		},
	}
}
