package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"igclient/pkg/instagram"
)

var (
	uploadCaption   string
	albumThumbnails []string
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload photos, videos and albums",
	Long: `Upload media through the private API upload pipelines.

Photos go through a single multipart upload followed by a configure
call. Videos are uploaded in four chunks to a server-assigned URL, then
a thumbnail and a configure call bind them. Albums upload each item as
a sidecar child and bind them with one configure call.`,
}

// uploadPhotoCmd represents the upload photo command
var uploadPhotoCmd = &cobra.Command{
	Use:   "photo <path>",
	Short: "Upload a photo",
	Example: `  # Upload a photo with a caption
  igclient upload photo vacation.jpg --caption "greetings from the coast"`,
	Args: cobra.ExactArgs(1),
	RunE: runUploadPhoto,
}

// uploadVideoCmd represents the upload video command
var uploadVideoCmd = &cobra.Command{
	Use:   "video <path> <thumbnail>",
	Short: "Upload a video with its thumbnail",
	Example: `  # Upload a video
  igclient upload video clip.mp4 clip.jpg --caption "new clip"`,
	Args: cobra.ExactArgs(2),
	RunE: runUploadVideo,
}

// uploadAlbumCmd represents the upload album command
var uploadAlbumCmd = &cobra.Command{
	Use:   "album <path>...",
	Short: "Upload a 2-10 item album",
	Long: `Upload an album of 2 to 10 photos and videos.

Every video item needs a thumbnail, given in order with repeated
--thumbnail flags. All items are validated before any network traffic.`,
	Example: `  # Two photos and a video
  igclient upload album a.jpg b.jpg c.mp4 --thumbnail c.jpg`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUploadAlbum,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.AddCommand(uploadPhotoCmd)
	uploadCmd.AddCommand(uploadVideoCmd)
	uploadCmd.AddCommand(uploadAlbumCmd)

	uploadCmd.PersistentFlags().StringVar(&uploadCaption, "caption", "", "caption for the post")
	uploadAlbumCmd.Flags().StringSliceVar(&albumThumbnails, "thumbnail", nil, "thumbnail for each video item, in order")
}

func runUploadPhoto(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	res, err := client.UploadPhoto(cmd.Context(), args[0], uploadCaption, nil)
	if err != nil {
		return err
	}
	return reportResult(res, "photo uploaded")
}

func runUploadVideo(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	res, err := client.UploadVideo(cmd.Context(), args[0], args[1], uploadCaption, nil)
	if err != nil {
		return err
	}
	return reportResult(res, "video uploaded")
}

func runUploadAlbum(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	items, err := buildAlbumItems(args, albumThumbnails)
	if err != nil {
		return err
	}

	res, err := client.UploadAlbum(cmd.Context(), items, uploadCaption)
	if err != nil {
		return err
	}
	return reportResult(res, "album uploaded")
}

// buildAlbumItems pairs video paths with their thumbnails in flag order.
func buildAlbumItems(paths, thumbnails []string) ([]instagram.AlbumItem, error) {
	items := make([]instagram.AlbumItem, 0, len(paths))
	next := 0
	for _, path := range paths {
		item := instagram.AlbumItem{Path: path}
		if isVideoPath(path) {
			if next >= len(thumbnails) {
				return nil, fmt.Errorf("video %s has no --thumbnail", path)
			}
			item.Thumbnail = thumbnails[next]
			next++
		}
		items = append(items, item)
	}
	if next < len(thumbnails) {
		return nil, fmt.Errorf("%d unused --thumbnail values", len(thumbnails)-next)
	}
	return items, nil
}

func isVideoPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".mov")
}

// reportResult prints the outcome of an API call and sets the exit
// status for server rejections.
func reportResult(res *instagram.Result, success string) error {
	if res.OK {
		fmt.Println(success)
		return nil
	}
	fmt.Fprintf(os.Stderr, "server rejected the request (HTTP %d)\n", res.StatusCode)
	if len(res.Body) > 0 {
		fmt.Fprintln(os.Stderr, string(res.Body))
	}
	return fmt.Errorf("upload failed with status %d", res.StatusCode)
}
