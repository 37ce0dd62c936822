package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	vdisk "github.com/ertancg/Comp304-FatFileSystem"
)

func main() {
	app := cli.App{
		Usage: "Manage miniature FAT-style virtual disk images",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a new virtual disk",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "block-size", Value: 512},
					&cli.IntFlag{Name: "block-count", Value: 2880},
					&cli.StringFlag{Name: "geometry"},
				},
				Action: createImage,
			},
			{
				Name:      "ls",
				Usage:     "List files on a virtual disk",
				ArgsUsage: "IMAGE",
				Action:    listFiles,
			},
			{
				Name:      "cat",
				Usage:     "Print a file's contents to stdout",
				ArgsUsage: "IMAGE FILE",
				Action:    catFile,
			},
			{
				Name:      "write",
				Usage:     "Write stdin to a file, creating it if needed",
				ArgsUsage: "IMAGE FILE",
				Action:    writeFile,
			},
			{
				Name:      "rm",
				Usage:     "Delete a file",
				ArgsUsage: "IMAGE FILE",
				Action:    removeFile,
			},
			{
				Name:      "dump",
				Usage:     "Dump the block map and directory",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "check"},
				},
				Action: dumpImage,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func createImage(c *cli.Context) error {
	imagePath := c.Args().First()
	if imagePath == "" {
		return cli.Exit("missing IMAGE argument", 1)
	}

	var fs *vdisk.Filesystem
	var err error
	if geometry := c.String("geometry"); geometry != "" {
		fs, err = vdisk.CreateWithGeometry(imagePath, geometry)
	} else {
		fs, err = vdisk.Create(imagePath, c.Int("block-size"), c.Int("block-count"))
	}
	if err != nil {
		return err
	}
	return fs.Save()
}

func listFiles(c *cli.Context) error {
	fs, err := openImage(c)
	if err != nil {
		return err
	}

	for _, f := range fs.Files() {
		fmt.Printf("%-32s %8d bytes\n", f.Name, f.Size)
	}
	return nil
}

func catFile(c *cli.Context) error {
	fs, err := openImage(c)
	if err != nil {
		return err
	}

	handle, err := fs.Open(c.Args().Get(1), false)
	if err != nil {
		return err
	}

	buffer := make([]byte, fs.FileSize(c.Args().Get(1)))
	if _, err := fs.Read(handle, buffer); err != nil {
		return err
	}
	if _, err := fs.Close(handle); err != nil {
		return err
	}

	_, err = os.Stdout.Write(buffer)
	return err
}

func writeFile(c *cli.Context) error {
	fs, err := openImage(c)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	handle, err := fs.Open(c.Args().Get(1), true)
	if err != nil {
		return err
	}
	if _, err := fs.Write(handle, data); err != nil {
		return err
	}
	if _, err := fs.Close(handle); err != nil {
		return err
	}

	return fs.Save()
}

func removeFile(c *cli.Context) error {
	fs, err := openImage(c)
	if err != nil {
		return err
	}
	if _, err := fs.Delete(c.Args().Get(1)); err != nil {
		return err
	}
	return fs.Save()
}

func dumpImage(c *cli.Context) error {
	fs, err := openImage(c)
	if err != nil {
		return err
	}
	fs.Dump(os.Stdout)

	if c.Bool("check") {
		if err := fs.Check(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return nil
}

func openImage(c *cli.Context) (*vdisk.Filesystem, error) {
	imagePath := c.Args().First()
	if imagePath == "" {
		return nil, cli.Exit("missing IMAGE argument", 1)
	}
	return vdisk.Load(imagePath)
}
