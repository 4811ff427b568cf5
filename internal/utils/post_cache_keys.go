package utils

import (
	"strconv"
)

// PostsCachePrefix scopes every cached public post payload.
const PostsCachePrefix = "posts:"

func BuildPostsListCacheKey(limit, offset int) string {
	return PostsCachePrefix + "list:v1:limit=" + strconv.Itoa(limit) +
		":offset=" + strconv.Itoa(offset)
}

func BuildPostCacheKey(slug string) string {
	return PostsCachePrefix + "slug:v1:" + slug
}
