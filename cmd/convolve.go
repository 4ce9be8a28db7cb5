package main

import (
	"fmt"

	"github.com/cwbudde/distconv/internal/bmp"
	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	processes    int
	coresPerNode int
	nodes        int
	chunkSize    int
	traceDir     string
)

var convolveCmd = &cobra.Command{
	Use:   "convolve <mode> <in> <out> <operation> [shared_file_tree]",
	Short: "Convolve a 24-bit BMP image with a kernel from the catalog",
	Args:  cobra.RangeArgs(4, 5),
	RunE:  runConvolve,
}

func init() {
	convolveCmd.Flags().IntVar(&processes, "processes", 1, "Total process count P")
	convolveCmd.Flags().IntVar(&coresPerNode, "cores-per-node", 1, "Cores available per node C")
	convolveCmd.Flags().IntVar(&nodes, "nodes", 1, "Node count N")
	convolveCmd.Flags().IntVar(&chunkSize, "chunk-size", 64, "Rows streamed per chunk in master mode")
	convolveCmd.Flags().StringVar(&traceDir, "trace-dir", "", "Directory for a dispatch/reply JSONL trace (master mode only)")
	rootCmd.AddCommand(convolveCmd)
}

func runConvolve(cmd *cobra.Command, args []string) error {
	mode := args[0]
	inPath := args[1]
	outPath := args[2]
	opName := args[3]

	op, err := model.ParseOperation(opName)
	if err != nil {
		return err
	}

	sharedFileTree := ""
	if mode == "parallel" {
		if len(args) != 5 {
			return fmt.Errorf("mode=parallel requires shared_file_tree argument (0 or 1)")
		}
		sharedFileTree = args[4]
		if sharedFileTree != "0" && sharedFileTree != "1" {
			return fmt.Errorf("shared_file_tree must be 0 or 1, got %q", sharedFileTree)
		}
	}

	topo := orchestrator.Topology{Processes: processes, CoresPerNode: coresPerNode, Nodes: nodes}

	var out *model.Image
	switch mode {
	case "serial":
		out, err = orchestrator.RunSerial(inPath, topo.ThreadsPerProcessSFT(), op)
	case "parallel":
		if sharedFileTree == "1" {
			out, err = orchestrator.RunSFT(inPath, topo, op)
		} else {
			out, err = orchestrator.RunNoSFT(inPath, topo, op)
		}
	case "master":
		out, err = orchestrator.RunMasterWorker(inPath, topo, chunkSize, op, traceDir)
	default:
		return fmt.Errorf("unknown mode %q: must be serial, parallel, or master", mode)
	}
	if err != nil {
		return err
	}

	return bmp.Save(outPath, out)
}
